package gconf

import (
	"reflect"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
)

// OwnedConfig is a configuration with an owner. Only the owner can
// authorize an update.
type OwnedConfig interface {
	Configuration
	GetOwner() custody.Address
}

// InitAdminFunc returns the address allowed to create a configuration
// that was not set in genesis.
type InitAdminFunc func(custody.ReadOnlyKVStore) (custody.Address, error)

// UpdateConfigurationHandler applies a configuration patch. The message
// must have a "Patch" field holding a configuration of the handled type.
// Non zero fields of the patch replace the stored values.
type UpdateConfigurationHandler struct {
	pkg       string
	template  OwnedConfig
	auth      x.Authenticator
	initAdmin InitAdminFunc
}

var _ custody.Handler = UpdateConfigurationHandler{}

// NewUpdateConfigurationHandler returns a handler updating the
// configuration of pkg. The template only provides the configuration type.
//
// The current owner must sign every update. A configuration missing from
// genesis has no owner yet; it can only be created when initAdmin is given
// and the address it returns signed the transaction.
func NewUpdateConfigurationHandler(
	pkg string,
	template OwnedConfig,
	auth x.Authenticator,
	initAdmin InitAdminFunc,
) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:       pkg,
		template:  template,
		auth:      auth,
		initAdmin: initAdmin,
	}
}

func (h UpdateConfigurationHandler) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.apply(ctx, store, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	conf, err := h.apply(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("configuration updated", "pkg", h.pkg, "owner", conf.GetOwner())
	return &custody.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) apply(ctx custody.Context, store custody.KVStore, tx custody.Tx) (OwnedConfig, error) {
	conf := reflect.New(reflect.TypeOf(h.template).Elem()).Interface().(OwnedConfig)
	if err := h.authorize(ctx, store, conf); err != nil {
		return nil, err
	}
	p, err := patchOf(tx)
	if err != nil {
		return nil, err
	}
	if err := merge(conf, p); err != nil {
		return nil, err
	}
	if err := Save(store, h.pkg, conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	return conf, nil
}

// authorize loads the current configuration into conf and checks that the
// party allowed to change it signed.
func (h UpdateConfigurationHandler) authorize(ctx custody.Context, store custody.KVStore, conf OwnedConfig) error {
	err := Load(store, h.pkg, conf)
	switch {
	case err == nil:
		owner := conf.GetOwner()
		if owner == nil {
			return errors.Wrapf(errors.ErrUnauthorized, "%s configuration has no owner", h.pkg)
		}
		if !h.auth.HasAddress(ctx, owner) {
			return errors.Wrap(errors.ErrUnauthorized, "owner did not sign transaction")
		}
		return nil
	case !errors.ErrNotFound.Is(err):
		return errors.Wrap(err, "load current configuration")
	case h.initAdmin == nil:
		return errors.Wrapf(errors.ErrUnauthorized, "%s configuration does not exist and cannot be created", h.pkg)
	}
	admin, err := h.initAdmin(store)
	if err != nil {
		return errors.Wrap(err, "get init admin")
	}
	if !h.auth.HasAddress(ctx, admin) {
		return errors.Wrap(errors.ErrUnauthorized, "initialization admin signature required")
	}
	return nil
}

// merge copies every non zero field of p into conf.
func merge(conf, p OwnedConfig) error {
	if reflect.TypeOf(p) != reflect.TypeOf(conf) {
		return errors.Wrapf(errors.ErrInvalidMsg, "patch %T does not match %T", p, conf)
	}
	dst := reflect.ValueOf(conf).Elem()
	src := reflect.ValueOf(p).Elem()
	for i := 0; i < dst.NumField(); i++ {
		f := src.Field(i)
		if reflect.DeepEqual(f.Interface(), reflect.Zero(f.Type()).Interface()) {
			continue
		}
		dst.Field(i).Set(f)
	}
	return nil
}

// patchOf validates the message of tx and returns the content of its
// "Patch" field.
func patchOf(tx custody.Tx) (OwnedConfig, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	v := reflect.ValueOf(msg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid message container value: %T", msg)
	}
	field := v.Elem().FieldByName("Patch")
	switch {
	case !field.IsValid() || field.Kind() != reflect.Ptr:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "%T has no \"Patch\" field", msg)
	case field.IsNil():
		return nil, errors.Wrap(errors.ErrInvalidState, `"Patch" field is required`)
	}
	p, ok := field.Interface().(OwnedConfig)
	if !ok {
		return nil, errors.Wrap(errors.ErrInvalidInput, `"Patch" field is of a wrong type`)
	}
	return p, nil
}
