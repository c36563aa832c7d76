package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldmed/supplyline/internal/entity"
)

func knownLookups() Lookups {
	return Lookups{
		FindUser: func(_ context.Context, pcvid string) (*entity.User, error) {
			if pcvid == "123456" {
				return &entity.User{ID: 1, PCVID: "123456", Email: "vol@example.org", Location: "Base Camp"}, nil
			}
			return nil, nil
		},
		FindSupply: func(_ context.Context, shortcode string) (*entity.Supply, error) {
			if shortcode == "ASDF" {
				return &entity.Supply{ID: 7, Shortcode: "ASDF", Name: "Azithromycin"}, nil
			}
			return nil, nil
		},
		ExistsUnresponded: func(context.Context, int64, int64) (bool, error) {
			return false, nil
		},
	}
}

func mustParse(t *testing.T, raw string) Fields {
	t.Helper()
	f, err := Parse(raw)
	require.NoError(t, err)
	return f
}

func TestValidateSuccess(t *testing.T) {
	v := NewValidator(knownLookups())

	draft, rej, err := v.Validate(context.Background(), mustParse(t, "123456, ASDF, 30mg, 50, Somewhere"))
	require.NoError(t, err)
	require.Nil(t, rej)
	require.NotNil(t, draft)

	assert.Equal(t, int64(1), draft.User.ID)
	assert.Equal(t, int64(7), draft.Supply.ID)
	assert.Equal(t, "30mg", draft.Unit)
	assert.Equal(t, 50, draft.Quantity)
	assert.Equal(t, "Somewhere", draft.Location)
}

func TestValidateUnrecognizedUser(t *testing.T) {
	v := NewValidator(knownLookups())

	draft, rej, err := v.Validate(context.Background(), mustParse(t, "XXX, ASDF, 30mg, 50, Somewhere"))
	require.NoError(t, err)
	require.Nil(t, draft)
	require.NotNil(t, rej)

	assert.Contains(t, rej.Errors, FieldError{Field: "user", Message: MsgUnrecognized})
	assert.Equal(t, KeyUnrecognizedPCVID, rej.Key())
}

func TestValidateUnrecognizedSupply(t *testing.T) {
	v := NewValidator(knownLookups())

	_, rej, err := v.Validate(context.Background(), mustParse(t, "123456, XXX, 30mg, 50, Somewhere"))
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, []FieldError{{Field: "supply", Message: MsgUnrecognized}}, rej.Errors)
	assert.Equal(t, KeyUnrecognizedShortcode, rej.Key())
}

func TestValidateAccumulatesAllErrors(t *testing.T) {
	v := NewValidator(Lookups{
		FindUser:          func(context.Context, string) (*entity.User, error) { return nil, nil },
		FindSupply:        func(context.Context, string) (*entity.Supply, error) { return nil, nil },
		ExistsUnresponded: func(context.Context, int64, int64) (bool, error) { return true, nil },
	})

	_, rej, err := v.Validate(context.Background(), Fields{
		PCVID:     "XXX",
		Shortcode: "XXX",
		Quantity:  "many",
	})
	require.NoError(t, err)
	require.NotNil(t, rej)

	// No fail-fast: every applicable rule reports, in rule order. The
	// duplicate rule is skipped because neither reference resolved.
	assert.Equal(t, []FieldError{
		{Field: "user", Message: MsgUnrecognized},
		{Field: "supply", Message: MsgUnrecognized},
		{Field: "location", Message: MsgMissing},
		{Field: "unit", Message: MsgMissing},
		{Field: "quantity", Message: MsgNotANumber},
	}, rej.Errors)
	assert.Equal(t, "user: unrecognized,supply: unrecognized,location: is missing,unit: is missing,quantity: not a number", rej.Join())
}

func TestValidateLocationFallsBackToUser(t *testing.T) {
	v := NewValidator(knownLookups())

	draft, rej, err := v.Validate(context.Background(), mustParse(t, "123456, ASDF, 30mg, 50, "))
	require.NoError(t, err)
	require.Nil(t, rej)
	assert.Equal(t, "Base Camp", draft.Location)
}

func TestValidateLocationMissingWithoutUser(t *testing.T) {
	v := NewValidator(knownLookups())

	_, rej, err := v.Validate(context.Background(), Fields{
		PCVID: "XXX", Shortcode: "ASDF", DosageValue: "30", DosageUnit: "mg", Quantity: "50",
	})
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Contains(t, rej.Errors, FieldError{Field: "location", Message: MsgMissing})
}

func TestValidateQuantityRules(t *testing.T) {
	v := NewValidator(knownLookups())

	_, rej, err := v.Validate(context.Background(), Fields{
		PCVID: "123456", Shortcode: "ASDF", DosageValue: "30", DosageUnit: "mg", Quantity: "50.5", Location: "Somewhere",
	})
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, []FieldError{{Field: "quantity", Message: MsgNotANumber}}, rej.Errors)
	assert.Equal(t, KeyInvalidQuantity, rej.Key())
}

func TestValidateDuplicate(t *testing.T) {
	l := knownLookups()
	l.ExistsUnresponded = func(_ context.Context, userID, supplyID int64) (bool, error) {
		assert.Equal(t, int64(1), userID)
		assert.Equal(t, int64(7), supplyID)
		return true, nil
	}
	v := NewValidator(l)

	_, rej, err := v.Validate(context.Background(), mustParse(t, "123456, ASDF, 30mg, 50, Somewhere"))
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, []FieldError{{Field: "supply", Message: MsgAlreadyOrdered}}, rej.Errors)
	assert.Equal(t, KeyDuplicateOrder, rej.Key())
}

func TestValidateDuplicateCheckSkippedWhenUnresolved(t *testing.T) {
	l := knownLookups()
	called := false
	l.ExistsUnresponded = func(context.Context, int64, int64) (bool, error) {
		called = true
		return false, nil
	}
	v := NewValidator(l)

	_, _, err := v.Validate(context.Background(), mustParse(t, "XXX, ASDF, 30mg, 50, Somewhere"))
	require.NoError(t, err)
	assert.False(t, called)
}

func TestValidateCollaboratorError(t *testing.T) {
	boom := errors.New("lookup store down")
	l := knownLookups()
	l.FindSupply = func(context.Context, string) (*entity.Supply, error) { return nil, boom }
	v := NewValidator(l)

	draft, rej, err := v.Validate(context.Background(), mustParse(t, "123456, ASDF, 30mg, 50, Somewhere"))
	assert.Nil(t, draft)
	assert.Nil(t, rej)
	assert.ErrorIs(t, err, boom)
}
