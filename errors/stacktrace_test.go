package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrappedErrorsCarryStack(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"registered error": {
			err:  Wrap(ErrUnauthorized, "release"),
			want: "release: unauthorized",
		},
		"formatted error": {
			err:  Wrap(fmt.Errorf("vault %d", 7), "close"),
			want: "close: vault 7",
		},
		"plain error": {
			err:  Wrap(stderrors.New("disk"), "commit"),
			want: "commit: disk",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
			assert.NotNil(t, stackTrace(tc.err))

			long := fmt.Sprintf("%+v", tc.err)
			assert.Contains(t, long, tc.want)
			assert.Contains(t, long, "errors/stacktrace_test.go")

			short := fmt.Sprintf("%v", tc.err)
			assert.True(t, strings.HasPrefix(short, tc.want), short)
			assert.NotContains(t, short, "\n")
			assert.Contains(t, short, "stacktrace_test.go:")
		})
	}
}
