package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"12.5":      "12.50",
		" 3 ":       "3.00",
		"$4.99":     "4.99",
		"1,250.00":  "1250.00",
		"":          "0.00",
		"abc":       "0.00",
		"NaN":       "0.00",
		"Infinity":  "0.00",
		"12.5.1":    "0.00",
		"-7":        "-7.00",
		"0.0000001": "0.00",
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseAmount(in).StringFixed(2), "input %q", in)
	}
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, "129.99", FromMinorUnits(12999).StringFixed(2))
	assert.Equal(t, int64(12999), ToMinorUnits(d("129.99")))
	assert.Equal(t, int64(1), ToMinorUnits(d("0.005")))
}

func TestAllowList(t *testing.T) {
	allow := NewAllowList("usd", " CAD ", "")

	assert.True(t, allow.Supports("USD"))
	assert.True(t, allow.Supports("cad"))
	assert.False(t, allow.Supports("EUR"))
	assert.False(t, allow.Supports(""))
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	var in struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
		D Amount `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a": 12.5, "b": "3.99", "c": null, "d": true}`), &in)
	assert.NoError(t, err)

	assert.Equal(t, "12.50", in.A.Decimal().StringFixed(2))
	assert.Equal(t, "3.99", in.B.Decimal().StringFixed(2))
	assert.True(t, in.C.Decimal().IsZero())
	assert.True(t, in.D.Decimal().IsZero())
	assert.Equal(t, Amount("1.5"), AmountOf(d("1.50")))
}
