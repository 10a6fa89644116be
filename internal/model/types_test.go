package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_JSON(t *testing.T) {
	p := Params{
		KeyStrike: Num("102.50"),
		KeyAsset:  Text("沪深300指数"),
		KeyType:   Choice(TypeSpread),
	}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"strike":102.5,"asset":"沪深300指数","type":"价差"}`, string(data))

	var back Params
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back[KeyStrike].Equal(Num("102.5")))
	assert.Equal(t, "沪深300指数", back.Text(KeyAsset))
	assert.Equal(t, KindText, back[KeyType].Kind, "strings decode as text")
}

func TestValue_UnmarshalRejectsNonValues(t *testing.T) {
	var v Value
	assert.Error(t, json.Unmarshal([]byte(`true`), &v))
	assert.Error(t, json.Unmarshal([]byte(`null`), &v))
}

func TestValue_UnmarshalRejectsOutOfRange(t *testing.T) {
	for _, raw := range []string{`1e400`, `1e20000000`, `-2000000000`, `1e-20`} {
		var v Value
		err := json.Unmarshal([]byte(raw), &v)
		assert.ErrorIs(t, err, ErrOutOfRange, raw)
	}
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`1e3`), &v))
	assert.Equal(t, "1000", v.String())
}

func TestCheckRange(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{in: "102.5", ok: true},
		{in: "-49.2", ok: true},
		{in: "1000000000", ok: true},
		{in: "0.000000000001", ok: true},
		{in: "1000000001"},
		{in: "1e10"},
		{in: "1e20000000"},
		{in: "0.0000000000001"},
		{in: "1e-20000000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := CheckRange(decimal.RequireFromString(tt.in))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrOutOfRange)
			}
		})
	}
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, Num("1.80").Equal(Num("1.8")))
	assert.False(t, Num("1").Equal(Text("1")))
	assert.False(t, Text("单鲨").Equal(Choice("单鲨")))
	assert.True(t, Choice("单鲨").Equal(Choice("单鲨")))
}

func TestParams_CloneAndAccessors(t *testing.T) {
	p := Params{KeyStrike: Num("100"), KeyMonth: Text("3M")}
	c := p.Clone()
	c[KeyStrike] = Num("90")

	assert.Equal(t, "100", p.Text(KeyStrike))
	assert.Equal(t, "3M", p.Text(KeyMonth))
	assert.Equal(t, "", p.Text(KeyAsset))
	assert.True(t, p.Num(KeyKnockIn).IsZero())
}

func TestKind_JSON(t *testing.T) {
	for _, k := range []Kind{KindNumber, KindText, KindChoice} {
		data, err := json.Marshal(k)
		require.NoError(t, err)
		var back Kind
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, k, back)
	}
	assert.Equal(t, `"enum"`, mustMarshal(t, KindChoice))

	var k Kind
	assert.Error(t, json.Unmarshal([]byte(`"date"`), &k))
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
