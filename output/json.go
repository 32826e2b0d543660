package output

import "io"

func renderJSON(out io.Writer, rep *Report) error {
	data, err := jsonMarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(out, "\n")
	return err
}
