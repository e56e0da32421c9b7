package weavetest

import "github.com/iov-one/custody"

// Handler returns the configured results or errors. Every call is
// counted and the path of each handled message is recorded in Paths.
type Handler struct {
	calls
	CheckResult   custody.CheckResult
	CheckErr      error
	DeliverResult custody.DeliverResult
	DeliverErr    error

	Paths []string
}

var _ custody.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	h.check++
	h.record(tx)
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	h.deliver++
	h.record(tx)
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) record(tx custody.Tx) {
	if tx != nil {
		h.Paths = append(h.Paths, custody.GetPath(tx))
	}
}

// WriteHandler writes Key/Value pair to the store on every call and then
// returns Err.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ custody.Handler = (*WriteHandler)(nil)

func (h *WriteHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, h.Err
}

func (h *WriteHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, h.Err
}

// PanicHandler panics with Msg on every call.
type PanicHandler struct {
	Msg interface{}
}

var _ custody.Handler = (*PanicHandler)(nil)

func (h *PanicHandler) Check(custody.Context, custody.KVStore, custody.Tx) (*custody.CheckResult, error) {
	panic(h.Msg)
}

func (h *PanicHandler) Deliver(custody.Context, custody.KVStore, custody.Tx) (*custody.DeliverResult, error) {
	panic(h.Msg)
}
