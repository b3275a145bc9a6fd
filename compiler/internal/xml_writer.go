package internal

import (
	"bufio"
	"io"
	"strings"
)

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// WriteTokensXML writes tokens in the <tokens> format the course tools compare against:
// one `<type> content </type>` line per token.
func WriteTokensXML(w io.Writer, tokens []*Token) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("<tokens>\n")
	for _, token := range tokens {
		tag := token.tp.String()
		bw.WriteString("<" + tag + "> " + xmlEscaper.Replace(token.content) + " </" + tag + ">\n")
	}
	bw.WriteString("</tokens>\n")
	return bw.Flush()
}
