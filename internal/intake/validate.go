package intake

import (
	"context"
	"strconv"
	"strings"

	"github.com/fieldmed/supplyline/internal/entity"
)

// Field error messages. The exact strings are part of the caller contract;
// gateway fixtures assert on them.
const (
	MsgUnrecognized   = "unrecognized"
	MsgMissing        = "is missing"
	MsgNotANumber     = "not a number"
	MsgAlreadyOrdered = "already ordered"
)

// FieldError is a single failed validation rule.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// Rejection carries every rule failure for a submission, in rule order.
type Rejection struct {
	Errors []FieldError
}

// Join renders the error list verbatim, comma separated, for callers that
// send the raw list instead of a localized message.
func (r Rejection) Join() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.String()
	}
	return strings.Join(msgs, ",")
}

// Lookups are the read-only collaborators the validator consults. Errors from
// them are propagated unmodified and never retried here.
type Lookups struct {
	FindUser          func(ctx context.Context, pcvid string) (*entity.User, error)
	FindSupply        func(ctx context.Context, shortcode string) (*entity.Supply, error)
	ExistsUnresponded func(ctx context.Context, userID, supplyID int64) (bool, error)
}

// Draft is a fully validated order draft, ready to persist.
type Draft struct {
	User     *entity.User
	Supply   *entity.Supply
	Unit     string
	Quantity int
	Location string
}

// Validator applies the intake rule list to a parsed field tuple.
type Validator struct {
	lookups Lookups
}

// NewValidator builds a Validator over the given collaborators.
func NewValidator(l Lookups) *Validator {
	return &Validator{lookups: l}
}

// state threads the parsed fields and partially resolved draft through the
// rule list.
type state struct {
	fields Fields
	draft  Draft
}

// rule inspects the state and reports at most one field error. A non-nil
// error return means a collaborator failed and validation aborts.
type rule func(ctx context.Context, s *state) (*FieldError, error)

func (v *Validator) rules() []rule {
	return []rule{
		v.resolveUser,
		v.resolveSupply,
		v.checkLocation,
		v.checkUnit,
		v.checkQuantity,
		v.checkDuplicate,
	}
}

// Validate runs every rule in order and accumulates all failures; it never
// stops at the first one. On zero failures the returned draft is complete.
// Nothing is persisted here.
func (v *Validator) Validate(ctx context.Context, f Fields) (*Draft, *Rejection, error) {
	s := &state{fields: f}

	var errs []FieldError
	for _, r := range v.rules() {
		fe, err := r(ctx, s)
		if err != nil {
			return nil, nil, err
		}
		if fe != nil {
			errs = append(errs, *fe)
		}
	}

	if len(errs) > 0 {
		return nil, &Rejection{Errors: errs}, nil
	}
	return &s.draft, nil, nil
}

func (v *Validator) resolveUser(ctx context.Context, s *state) (*FieldError, error) {
	user, err := v.lookups.FindUser(ctx, s.fields.PCVID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &FieldError{Field: "user", Message: MsgUnrecognized}, nil
	}
	s.draft.User = user
	return nil, nil
}

func (v *Validator) resolveSupply(ctx context.Context, s *state) (*FieldError, error) {
	supply, err := v.lookups.FindSupply(ctx, s.fields.Shortcode)
	if err != nil {
		return nil, err
	}
	if supply == nil {
		return &FieldError{Field: "supply", Message: MsgUnrecognized}, nil
	}
	s.draft.Supply = supply
	return nil, nil
}

// checkLocation falls back to the resolved user's stored location when the
// message omitted one.
func (v *Validator) checkLocation(_ context.Context, s *state) (*FieldError, error) {
	loc := s.fields.Location
	if loc == "" && s.draft.User != nil {
		loc = s.draft.User.Location
	}
	if loc == "" {
		return &FieldError{Field: "location", Message: MsgMissing}, nil
	}
	s.draft.Location = loc
	return nil, nil
}

func (v *Validator) checkUnit(_ context.Context, s *state) (*FieldError, error) {
	unit := s.fields.Dosage()
	if unit == "" {
		return &FieldError{Field: "unit", Message: MsgMissing}, nil
	}
	s.draft.Unit = unit
	return nil, nil
}

// checkQuantity requires a whole number. This holds at creation only; later
// mutation of the column is not this rule's concern.
func (v *Validator) checkQuantity(_ context.Context, s *state) (*FieldError, error) {
	if s.fields.Quantity == "" {
		return &FieldError{Field: "quantity", Message: MsgMissing}, nil
	}
	qty, err := strconv.Atoi(s.fields.Quantity)
	if err != nil {
		return &FieldError{Field: "quantity", Message: MsgNotANumber}, nil
	}
	s.draft.Quantity = qty
	return nil, nil
}

// checkDuplicate enforces one outstanding order per (user, supply) pair. It
// only runs once both references resolved. The check and the later insert are
// not atomic; concurrent submissions can race through it, which matches the
// legacy contract and is backed by the response existence index downstream.
func (v *Validator) checkDuplicate(ctx context.Context, s *state) (*FieldError, error) {
	if s.draft.User == nil || s.draft.Supply == nil {
		return nil, nil
	}
	exists, err := v.lookups.ExistsUnresponded(ctx, s.draft.User.ID, s.draft.Supply.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return &FieldError{Field: "supply", Message: MsgAlreadyOrdered}, nil
	}
	return nil, nil
}
