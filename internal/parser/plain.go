package parser

import "io"

func extractPlain(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return joinPages([]string{string(raw)}), nil
}
