package session

import (
	"errors"
	"testing"

	"payoffchart/internal/model"
	"payoffchart/internal/structure"
	"payoffchart/internal/termsheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, v model.Variant) *Store {
	t.Helper()
	s, err := NewStore(structure.New(), v)
	require.NoError(t, err)
	return s
}

func TestStore_SeedsDefaults(t *testing.T) {
	s := newStore(t, model.VanillaCall)
	assert.Equal(t, model.VanillaCall, s.Variant())
	assert.Equal(t, "37", s.Params().Text(model.KeyParticipationRate))

	_, err := NewStore(structure.New(), "nope")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestStore_SwitchResetsToDefaults(t *testing.T) {
	s := newStore(t, model.SharkfinCall)
	require.NoError(t, s.Edit(map[model.Key]string{model.KeyStrike: "99"}))

	require.NoError(t, s.Switch(model.Snowball3Leg))
	p := s.Params()
	assert.NotContains(t, p, model.KeyStrike)
	assert.Equal(t, "80", p.Text(model.KeyKnockIn))

	require.NoError(t, s.Switch("看涨单鲨/价差"))
	assert.Equal(t, model.SharkfinCall, s.Variant())
	assert.Equal(t, "102", s.Params().Text(model.KeyStrike))

	assert.ErrorIs(t, s.Switch("unknown"), ErrUnknownVariant)
	assert.Equal(t, model.SharkfinCall, s.Variant())
}

func TestStore_ParseSwitchesThenMerges(t *testing.T) {
	s := newStore(t, model.SharkfinCall)
	res, err := s.ParseAndApply("结构\t敲入价\t敲出价\t行权价\t标的\n三元小雪球\t75%\t103%\t95%\t中证500")
	require.NoError(t, err)
	require.NotNil(t, res.Variant)

	assert.Equal(t, model.Snowball3Leg, s.Variant())
	p := s.Params()
	assert.Equal(t, "75", p.Text(model.KeyKnockIn))
	assert.Equal(t, "103", p.Text(model.KeyKnockOut))
	assert.Equal(t, "中证500", p.Text(model.KeyAsset))
	assert.Equal(t, "4.2", p.Text(model.KeyRet3), "untouched keys keep defaults")
	assert.NotContains(t, p, model.KeyStrike, "keys outside the schema are dropped")
}

func TestStore_ParseWithoutStructureKeepsVariant(t *testing.T) {
	s := newStore(t, model.SharkfinPut)
	require.NoError(t, s.Edit(map[model.Key]string{model.KeyType: model.TypeSpread}))

	_, err := s.ParseAndApply("行权价\t备注\n98%\tx")
	require.NoError(t, err)
	assert.Equal(t, model.SharkfinPut, s.Variant())
	assert.Equal(t, "98", s.Params().Text(model.KeyStrike))
	assert.Equal(t, model.TypeSpread, s.Params().Text(model.KeyType), "no reset without an inferred variant")
}

func TestStore_FailedParseLeavesStateUntouched(t *testing.T) {
	s := newStore(t, model.SharkfinCall)
	require.NoError(t, s.Edit(map[model.Key]string{model.KeyStrike: "101"}))
	before := s.Snapshot()

	_, err := s.ParseAndApply("结构\t行权价\t障碍价\n看跌单鲨\t100%\tabc")
	var pe *termsheet.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "障碍价", pe.Header)

	assert.Equal(t, before, s.Snapshot())
}

func TestStore_ApplyParseIgnoresUnregisteredVariant(t *testing.T) {
	s := newStore(t, model.VanillaCall)
	ghost := model.Variant("autocall")
	switched := s.ApplyParse(termsheet.Result{
		Variant: &ghost,
		Fields:  model.Params{model.KeyStrike: model.Num("105")},
	})
	assert.False(t, switched)
	assert.Equal(t, model.VanillaCall, s.Variant())
	assert.Equal(t, "105", s.Params().Text(model.KeyStrike))
}

func TestStore_Edit(t *testing.T) {
	tests := []struct {
		name    string
		edits   map[model.Key]string
		wantErr error
		check   func(*testing.T, model.Params)
	}{
		{
			name:  "numbers strip percent",
			edits: map[model.Key]string{model.KeyStrike: "103.5%", model.KeyMonth: " 6M "},
			check: func(t *testing.T, p model.Params) {
				assert.Equal(t, "103.5", p.Text(model.KeyStrike))
				assert.Equal(t, "6M", p.Text(model.KeyMonth))
			},
		},
		{
			name:  "choice",
			edits: map[model.Key]string{model.KeyType: model.TypeSpread},
			check: func(t *testing.T, p model.Params) {
				assert.Equal(t, model.KindChoice, p[model.KeyType].Kind)
				assert.Equal(t, model.TypeSpread, p.Text(model.KeyType))
			},
		},
		{
			name:    "field of another structure",
			edits:   map[model.Key]string{model.KeyRet2: "4"},
			wantErr: ErrUnknownField,
		},
		{
			name:  "bad choice",
			edits: map[model.Key]string{model.KeyType: "雪球"},
		},
		{
			name:  "number out of range",
			edits: map[model.Key]string{model.KeyStrike: "1e400"},
		},
		{
			name:  "empty number",
			edits: map[model.Key]string{model.KeyStrike: "100", model.KeyCost: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, model.SharkfinCall)
			before := s.Params()

			err := s.Edit(tt.edits)
			if tt.check != nil {
				require.NoError(t, err)
				tt.check(t, s.Params())
				return
			}

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				var fe *FieldError
				assert.True(t, errors.As(err, &fe))
			}
			assert.Equal(t, before, s.Params(), "failed edit must not change anything")
		})
	}
}

func TestStore_GeometryFollowsParams(t *testing.T) {
	s := newStore(t, model.VanillaCall)
	require.NoError(t, s.Edit(map[model.Key]string{model.KeyMinRet: "1"}))

	g := s.Geometry()
	assert.Equal(t, model.VanillaCall, g.Variant)
	assert.Equal(t, 1.0, g.Segments[0].Points[0].Y)
	assert.Equal(t, g, s.Geometry())
}

func TestStore_SnapshotIsDetached(t *testing.T) {
	s := newStore(t, model.CallKnockout2Leg)
	snap := s.Snapshot()
	assert.Equal(t, "看涨敲出", snap.Label)
	assert.Len(t, snap.Fields, 7)

	snap.Params[model.KeyRet1] = model.Num("99")
	assert.Equal(t, "0.2", s.Params().Text(model.KeyRet1))
}
