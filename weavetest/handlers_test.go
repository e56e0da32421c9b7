package weavetest

import (
	"reflect"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

func TestHandlerWithError(t *testing.T) {
	h := Handler{
		CheckErr:   errors.ErrUnauthorized,
		DeliverErr: errors.ErrNotFound,
	}

	_, err := h.Check(nil, nil, nil)
	if want := errors.ErrUnauthorized; !want.Is(err) {
		t.Errorf("want %q, got %q", want, err)
	}

	_, err = h.Deliver(nil, nil, nil)
	if want := errors.ErrNotFound; !want.Is(err) {
		t.Errorf("want %q, got %q", want, err)
	}
}

//nolint
func TestHandlerCallCount(t *testing.T) {
	var h Handler

	assertHCounts(t, &h, 0, 0)

	h.Check(nil, nil, nil)
	assertHCounts(t, &h, 1, 0)

	h.Check(nil, nil, nil)
	assertHCounts(t, &h, 2, 0)

	h.Deliver(nil, nil, nil)
	assertHCounts(t, &h, 2, 1)

	h.Deliver(nil, nil, nil)
	assertHCounts(t, &h, 2, 2)

	// Failing counter must increment as well.
	h.CheckErr = errors.ErrNotFound
	h.DeliverErr = errors.ErrNotFound

	h.Check(nil, nil, nil)
	assertHCounts(t, &h, 3, 2)

	h.Deliver(nil, nil, nil)
	assertHCounts(t, &h, 3, 3)
}

func assertHCounts(t *testing.T, h *Handler, wantCheck, wantDeliver int) {
	t.Helper()
	if got := h.CheckCallCount(); got != wantCheck {
		t.Errorf("want %d checks, got %d", wantCheck, got)
	}
	if got := h.DeliverCallCount(); got != wantDeliver {
		t.Errorf("want %d delivers, got %d", wantDeliver, got)
	}
	wantTotal := wantCheck + wantDeliver
	if got := h.CallCount(); got != wantTotal {
		t.Errorf("want %d total, got %d", wantTotal, got)
	}
}

func TestHandlerResult(t *testing.T) {
	wantCres := custody.CheckResult{
		Data:         []byte("foo"),
		GasAllocated: 5,
	}
	wantDres := custody.DeliverResult{
		Data:    []byte("bar"),
		GasUsed: 824,
	}
	h := Handler{
		CheckResult:   wantCres,
		DeliverResult: wantDres,
	}

	gotCres, _ := h.Check(nil, nil, nil)
	if !reflect.DeepEqual(&wantCres, gotCres) {
		t.Fatalf("got check result: %+v", gotCres)
	}
	gotDres, _ := h.Deliver(nil, nil, nil)
	if !reflect.DeepEqual(&wantDres, gotDres) {
		t.Fatalf("got deliver result: %+v", gotDres)
	}
}

func TestWriteHandler(t *testing.T) {
	db := store.MemStore()
	h := WriteHandler{Key: []byte("k"), Value: []byte("v"), Err: errors.ErrInvalidState}

	_, err := h.Deliver(nil, db, nil)
	if !errors.ErrInvalidState.Is(err) {
		t.Fatalf("want invalid state error, got %v", err)
	}
	got, err := db.Get([]byte("k"))
	if err != nil {
		t.Fatalf("cannot get: %s", err)
	}
	if string(got) != "v" {
		t.Fatalf("want value written, got %q", got)
	}
}

func TestPanicHandler(t *testing.T) {
	h := PanicHandler{Msg: "boom"}
	defer func() {
		if r := recover(); r != "boom" {
			t.Fatalf("unexpected recover value: %v", r)
		}
	}()
	_, _ = h.Check(nil, nil, nil)
	t.Fatal("panic expected")
}

func TestHandlerRecordsPaths(t *testing.T) {
	var h Handler
	_, _ = h.Check(nil, nil, &Tx{Msg: &Msg{RoutePath: "escrow/make"}})
	_, _ = h.Deliver(nil, nil, &Tx{Msg: &Msg{RoutePath: "escrow/deposit"}})
	_, _ = h.Deliver(nil, nil, nil)

	if h.CallCount() != 3 {
		t.Fatalf("want 3 calls, got %d", h.CallCount())
	}
	want := []string{"escrow/make", "escrow/deposit"}
	if !reflect.DeepEqual(want, h.Paths) {
		t.Fatalf("want %v, got %v", want, h.Paths)
	}
}

func TestTxSerializesMessage(t *testing.T) {
	tx := &Tx{Msg: &Msg{}}
	if err := tx.Unmarshal([]byte("payload")); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	raw, err := tx.Marshal()
	if err != nil || string(raw) != "payload" {
		t.Fatalf("got %q, %v", raw, err)
	}

	var empty Tx
	if _, err := empty.Marshal(); !errors.ErrEmpty.Is(err) {
		t.Fatalf("want empty error, got %v", err)
	}
}
