//go:build !unix

package scanner

func getFileID(path string) string {
	return ""
}
