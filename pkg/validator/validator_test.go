package validator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type colorInput struct {
	Name string `validate:"required,max=40"`
	Hex  string `validate:"required,hexcolor"`
}

type productInput struct {
	Name       string       `validate:"required,min=2"`
	Quantity   int          `validate:"gte=0,lte=100000"`
	Visibility string       `validate:"oneof=all wholesaleOnly retailOnly"`
	Colors     []colorInput `validate:"dive"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	in := productInput{
		Name:       "Kanjivaram silk",
		Quantity:   3,
		Visibility: "all",
		Colors:     []colorInput{{Name: "Maroon", Hex: "#800000"}},
	}
	assert.NoError(t, Validate(in))
}

func TestValidate_Messages(t *testing.T) {
	in := productInput{Name: "K", Quantity: -1, Visibility: "everyone"}
	fields := fieldsOf(t, Validate(in))

	assert.Equal(t, "must be at least 2", fields["Name"])
	assert.Equal(t, "must be greater than or equal to 0", fields["Quantity"])
	assert.Contains(t, fields["Visibility"], "one of")
}

func TestValidate_DivesIntoColors(t *testing.T) {
	in := productInput{Name: "Banarasi", Visibility: "all", Colors: []colorInput{{Name: "Gold", Hex: "gold"}}}
	fields := fieldsOf(t, Validate(in))
	assert.Equal(t, "must be a hex color such as #aa3300", fields["Hex"])
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(productInput{Visibility: "all"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Name'")
	assert.Contains(t, err.Error(), "is required")
}

func TestRegister_CustomTag(t *testing.T) {
	require.NoError(t, Register("noblank", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "must not be blank"))

	type in struct {
		Label string `validate:"noblank"`
	}
	fields := fieldsOf(t, Validate(in{Label: "   "}))
	assert.Equal(t, "must not be blank", fields["Label"])
	assert.NoError(t, Validate(in{Label: "ok"}))
}

func TestDecodeAndValidate_Success(t *testing.T) {
	body := `{"Name":"Paithani","Quantity":2,"Visibility":"retailOnly"}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))

	var in productInput
	require.NoError(t, DecodeAndValidate(req, &in))
	assert.Equal(t, "Paithani", in.Name)
	assert.Equal(t, 2, in.Quantity)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{invalid"))

	var in productInput
	err := DecodeAndValidate(req, &in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_UnknownField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Name":"Ikat","Owner":"x"}`))

	var in productInput
	err := DecodeAndValidate(req, &in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
