package response

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// BodyStructure renders a BODYSTRUCTURE per §4.5: a single part is
// `("TYPE" "SUBTYPE" params id desc encoding size [lines])`; a
// multipart is `(part1 part2 … "SUBTYPE")` with parts space-separated.
// The upstream already hands back the recursive structure, so this is
// pure serialisation, never MIME parsing.
func BodyStructure(bs *upstream.BodyStructure) string {
	if bs == nil {
		return "NIL"
	}
	return bodyStructurePart(bs)
}

func bodyStructurePart(bs *upstream.BodyStructure) string {
	if len(bs.Parts) > 0 {
		parts := make([]string, len(bs.Parts))
		for i, p := range bs.Parts {
			parts[i] = bodyStructurePart(&p)
		}
		return fmt.Sprintf("(%s %s)", strings.Join(parts, " "), QuoteOrLiteral(strings.ToUpper(bs.Subtype)))
	}

	fields := []string{
		QuoteOrLiteral(strings.ToUpper(bs.Type)),
		QuoteOrLiteral(strings.ToUpper(bs.Subtype)),
		paramList(bs.Params),
		QuoteOrLiteral(bs.ID),
		QuoteOrLiteral(bs.Description),
		QuoteOrLiteral(strings.ToUpper(bs.Encoding)),
		fmt.Sprintf("%d", bs.Size),
	}
	if strings.EqualFold(bs.Type, "TEXT") {
		fields = append(fields, fmt.Sprintf("%d", bs.Lines))
	}
	return "(" + strings.Join(fields, " ") + ")"
}

func paramList(params map[string]string) string {
	if len(params) == 0 {
		return "NIL"
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, QuoteOrLiteral(strings.ToUpper(k)), QuoteOrLiteral(params[k]))
	}
	return "(" + strings.Join(pairs, " ") + ")"
}
