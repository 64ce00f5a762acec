package output

import (
	"strconv"

	"github.com/yndnr/litekv-go/internal/core/domain"
)

// FormatReply renders a reply the way redis-cli prints it.
func FormatReply(r domain.Reply) string {
	switch r.Kind {
	case domain.ReplyOK:
		return "OK"
	case domain.ReplyBulk:
		return strconv.Quote(r.Bulk)
	case domain.ReplyNil:
		return "(nil)"
	case domain.ReplyInteger:
		return "(integer) " + strconv.FormatInt(r.Integer, 10)
	default:
		return "(error) " + r.Message
	}
}
