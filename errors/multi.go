package errors

import (
	"fmt"
	"strings"
)

// Append combines all given errors into a single error instance. Nil values
// are ignored. If no non-nil error is provided, nil is returned. A single
// error is returned as it is.
//
// The ABCI code of the combined error is the code of the first error.
func Append(errs ...error) error {
	var res []error
	for _, e := range errs {
		if errIsNil(e) {
			continue
		}
		if m, ok := e.(*multiErr); ok {
			res = append(res, m.errs...)
		} else {
			res = append(res, e)
		}
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return &multiErr{errs: res}
	}
}

type multiErr struct {
	errs []error
}

func (m *multiErr) Error() string {
	msgs := make([]string, len(m.errs))
	for i, e := range m.errs {
		msgs[i] = fmt.Sprintf("* %s", e)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m.errs), strings.Join(msgs, "\n\t"))
}

func (m *multiErr) ABCICode() uint32 {
	return abciCode(m.errs[0])
}
