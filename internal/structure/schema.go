package structure

import "payoffchart/internal/model"

// Field catalog shared by all structures. Order here is display order.
var (
	fieldStrike        = model.FieldDescriptor{Key: model.KeyStrike, Kind: model.KindNumber, Label: "行权价(%)"}
	fieldKnockIn       = model.FieldDescriptor{Key: model.KeyKnockIn, Kind: model.KindNumber, Label: "敲入价(%)"}
	fieldKnockOut      = model.FieldDescriptor{Key: model.KeyKnockOut, Kind: model.KindNumber, Label: "敲出价(%)"}
	fieldParticipation = model.FieldDescriptor{Key: model.KeyParticipationRate, Kind: model.KindNumber, Label: "参与率(%)"}
	fieldMinRet        = model.FieldDescriptor{Key: model.KeyMinRet, Kind: model.KindNumber, Label: "最低收益(%)"}
	fieldMaxRet        = model.FieldDescriptor{Key: model.KeyMaxRet, Kind: model.KindNumber, Label: "最高收益(%)"}
	fieldKnockRet      = model.FieldDescriptor{Key: model.KeyKnockRet, Kind: model.KindNumber, Label: "敲出收益(%)"}
	fieldRet1          = model.FieldDescriptor{Key: model.KeyRet1, Kind: model.KindNumber, Label: "保底/敲入未敲出收益(%)"}
	fieldRet2          = model.FieldDescriptor{Key: model.KeyRet2, Kind: model.KindNumber, Label: "中间/未敲入未敲出收益(%)"}
	fieldRet3          = model.FieldDescriptor{Key: model.KeyRet3, Kind: model.KindNumber, Label: "敲出收益(%)"}
	fieldMonth         = model.FieldDescriptor{Key: model.KeyMonth, Kind: model.KindText, Label: "期限"}
	fieldAsset         = model.FieldDescriptor{Key: model.KeyAsset, Kind: model.KindText, Label: "标的资产"}
	fieldCost          = model.FieldDescriptor{Key: model.KeyCost, Kind: model.KindNumber, Label: "费率(%)"}
	fieldType          = model.FieldDescriptor{
		Key: model.KeyType, Kind: model.KindChoice, Label: "单鲨/价差",
		Choices: []string{model.TypeSingleBarrier, model.TypeSpread},
	}
)

// Schema is the immutable parameter definition of one structure.
type Schema struct {
	Fields   []model.FieldDescriptor
	Defaults model.Params
}

// Field looks up a descriptor by key.
func (s Schema) Field(k model.Key) (model.FieldDescriptor, bool) {
	for _, f := range s.Fields {
		if f.Key == k {
			return f, true
		}
	}
	return model.FieldDescriptor{}, false
}

// Has reports whether k belongs to the schema.
func (s Schema) Has(k model.Key) bool {
	_, ok := s.Field(k)
	return ok
}

var sharkfinFields = []model.FieldDescriptor{
	fieldStrike, fieldKnockOut, fieldParticipation, fieldMinRet, fieldMaxRet, fieldKnockRet,
	fieldMonth, fieldAsset, fieldCost, fieldType,
}

func schemas() map[model.Variant]Schema {
	return map[model.Variant]Schema{
		model.SharkfinCall: {
			Fields: sharkfinFields,
			Defaults: model.Params{
				model.KeyStrike:            model.Num("102"),
				model.KeyKnockOut:          model.Num("108"),
				model.KeyParticipationRate: model.Num("49.2"),
				model.KeyMinRet:            model.Num("1.8"),
				model.KeyMaxRet:            model.Num("4.38"),
				model.KeyKnockRet:          model.Num("1.8"),
				model.KeyMonth:             model.Text("2025-07"),
				model.KeyAsset:             model.Text("沪深300指数"),
				model.KeyCost:              model.Num("0.42"),
				model.KeyType:              model.Choice(model.TypeSingleBarrier),
			},
		},
		model.SharkfinPut: {
			Fields: sharkfinFields,
			Defaults: model.Params{
				model.KeyStrike:            model.Num("100"),
				model.KeyKnockOut:          model.Num("90"),
				model.KeyParticipationRate: model.Num("42"),
				model.KeyMinRet:            model.Num("1"),
				model.KeyMaxRet:            model.Num("5.2"),
				model.KeyKnockRet:          model.Num("2.25"),
				model.KeyMonth:             model.Text("3M"),
				model.KeyAsset:             model.Text("黄金现货9999"),
				model.KeyCost:              model.Num("0.42"),
				model.KeyType:              model.Choice(model.TypeSingleBarrier),
			},
		},
		model.Snowball3Leg: {
			Fields: []model.FieldDescriptor{
				fieldKnockIn, fieldKnockOut, fieldRet1, fieldRet2, fieldRet3,
				fieldMonth, fieldAsset, fieldCost,
			},
			Defaults: model.Params{
				model.KeyKnockIn:  model.Num("80"),
				model.KeyKnockOut: model.Num("100"),
				model.KeyRet1:     model.Num("0.2"),
				model.KeyRet2:     model.Num("4"),
				model.KeyRet3:     model.Num("4.2"),
				model.KeyMonth:    model.Text("24M"),
				model.KeyAsset:    model.Text("中证1000"),
				model.KeyCost:     model.Num("0.42"),
			},
		},
		model.CallKnockout2Leg: {
			Fields: []model.FieldDescriptor{
				fieldKnockIn, fieldKnockOut, fieldRet1, fieldRet3,
				fieldMonth, fieldAsset, fieldCost,
			},
			Defaults: model.Params{
				model.KeyKnockIn:  model.Num("100"),
				model.KeyKnockOut: model.Num("101"),
				model.KeyRet1:     model.Num("0.2"),
				model.KeyRet3:     model.Num("4.15"),
				model.KeyMonth:    model.Text("6M"),
				model.KeyAsset:    model.Text("黄金9999"),
				model.KeyCost:     model.Num("0.22"),
			},
		},
		model.VanillaCall: {
			Fields: []model.FieldDescriptor{
				fieldStrike, fieldParticipation, fieldMinRet,
				fieldMonth, fieldAsset, fieldCost,
			},
			Defaults: model.Params{
				model.KeyStrike:            model.Num("100"),
				model.KeyParticipationRate: model.Num("37"),
				model.KeyMinRet:            model.Num("0.05"),
				model.KeyMonth:             model.Text("10M"),
				model.KeyAsset:             model.Text("中证1000"),
				model.KeyCost:              model.Num("0.42"),
			},
		},
	}
}
