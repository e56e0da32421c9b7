package custody

import (
	"testing"

	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/weavetest/assert"
)

type releaseMsg struct {
	Escrow []byte
	Note   string
}

func (releaseMsg) Path() string             { return "escrow/release" }
func (releaseMsg) Validate() error          { return nil }
func (releaseMsg) Marshal() ([]byte, error) { return []byte("release"), nil }
func (*releaseMsg) Unmarshal([]byte) error  { return nil }

var _ Msg = (*releaseMsg)(nil)

// Shapes of generated oneof wrappers.
type (
	sumRelease   struct{ ReleaseMsg *releaseMsg }
	sumTwoFields struct {
		ReleaseMsg *releaseMsg
		Memo       string
	}
	sumNested  struct{ Inner *sumRelease }
	sumByValue struct{ ReleaseMsg releaseMsg }
)

func TestExtractMsgFromSum(t *testing.T) {
	msg := &releaseMsg{Escrow: []byte{1, 2, 3}, Note: "done"}

	cases := map[string]struct {
		sum     interface{}
		wantErr *errors.Error
	}{
		"message in wrapper":      {sum: &sumRelease{msg}},
		"nil sum":                 {sum: nil, wantErr: errors.ErrInvalidInput},
		"not a struct":            {sum: 42, wantErr: errors.ErrInvalidInput},
		"wrapper passed by value": {sum: sumRelease{msg}, wantErr: errors.ErrInvalidInput},
		"extra wrapper field":     {sum: &sumTwoFields{msg, "memo"}, wantErr: errors.ErrInvalidInput},
		"empty wrapper":           {sum: &sumRelease{}, wantErr: errors.ErrInvalidState},
		"wrapped value not a msg": {sum: &sumNested{&sumRelease{}}, wantErr: errors.ErrInvalidType},
		"message held by value":   {sum: &sumByValue{}, wantErr: errors.ErrInvalidType},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ExtractMsgFromSum(tc.sum)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v, got %+v", tc.wantErr, err)
			}
			if tc.wantErr != nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, Msg(msg), got)
		})
	}
}

func TestLoadMsg(t *testing.T) {
	cases := map[string]struct {
		tx      Tx
		dest    interface{}
		want    Msg
		wantErr *errors.Error
	}{
		"copies the message": {
			tx:   &stubTx{msg: &releaseMsg{Escrow: []byte{9}, Note: "x"}},
			dest: &releaseMsg{},
			want: &releaseMsg{Escrow: []byte{9}, Note: "x"},
		},
		"other message type": {
			tx:   &stubTx{msg: &stubMsg{seq: 11}},
			dest: &stubMsg{},
			want: &stubMsg{seq: 11},
		},
		"no message": {
			tx:      &stubTx{},
			wantErr: errors.ErrInvalidState,
		},
		"destination by value": {
			tx:      &stubTx{msg: &stubMsg{seq: 1}},
			dest:    stubMsg{},
			wantErr: errors.ErrInvalidType,
		},
		"destination of another type": {
			tx:      &stubTx{msg: &releaseMsg{}},
			dest:    &stubMsg{},
			wantErr: errors.ErrInvalidType,
		},
		"nil destination": {
			tx:      &stubTx{msg: &stubMsg{seq: 2}},
			dest:    (*stubMsg)(nil),
			wantErr: errors.ErrInvalidType,
		},
		"nil interface destination": {
			tx:      &stubTx{msg: &stubMsg{seq: 3}},
			dest:    Msg(nil),
			wantErr: errors.ErrInvalidType,
		},
		"validation failure": {
			tx:      &stubTx{msg: &stubMsg{seq: 4, err: errors.ErrInvalidAmount}},
			dest:    &stubMsg{},
			wantErr: errors.ErrInvalidAmount,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := LoadMsg(tc.tx, tc.dest)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v, got %+v", tc.wantErr, err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, tc.dest)
			}
		})
	}
}

func TestGetPath(t *testing.T) {
	assert.Equal(t, "escrow/release", GetPath(&stubTx{msg: &releaseMsg{}}))
	assert.Equal(t, "(missing)", GetPath(&stubTx{}))
}

type stubTx struct {
	Tx
	msg Msg
}

func (tx *stubTx) GetMsg() (Msg, error) { return tx.msg, nil }

type stubMsg struct {
	Msg
	seq int64
	err error
}

func (m *stubMsg) Validate() error { return m.err }
