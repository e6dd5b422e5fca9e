package ingredient

import "strings"

// Unit 度量單位（封閉列舉），空字串代表沒有單位
type Unit string

const (
	UnitNone       Unit = ""
	UnitItem       Unit = "item"
	UnitTeaspoon   Unit = "teaspoon"
	UnitTablespoon Unit = "tablespoon"
	UnitCup        Unit = "cup"
	UnitOunce      Unit = "ounce"
	UnitPound      Unit = "pound"
	UnitGram       Unit = "gram"
	UnitKilogram   Unit = "kilogram"
	UnitPint       Unit = "pint"
	UnitQuart      Unit = "quart"
	UnitGallon     Unit = "gallon"
	UnitLiter      Unit = "liter"
	UnitCan        Unit = "can"
	UnitBunch      Unit = "bunch"
	UnitPiece      Unit = "piece"
	UnitPinch      Unit = "pinch"
	UnitClove      Unit = "clove"
	UnitJar        Unit = "jar"
	UnitBottle     Unit = "bottle"
	UnitContainer  Unit = "container"
)

// Units 所有可用單位，依列舉順序
var Units = []Unit{
	UnitItem, UnitTeaspoon, UnitTablespoon, UnitCup, UnitOunce, UnitPound,
	UnitGram, UnitKilogram, UnitPint, UnitQuart, UnitGallon, UnitLiter,
	UnitCan, UnitBunch, UnitPiece, UnitPinch, UnitClove, UnitJar, UnitBottle, UnitContainer,
}

// unitAliases 別名表，鍵一律小寫
var unitAliases = map[string]Unit{
	"item": UnitItem, "items": UnitItem, "ea": UnitItem, "each": UnitItem,
	"teaspoon": UnitTeaspoon, "teaspoons": UnitTeaspoon, "tsp": UnitTeaspoon, "tsps": UnitTeaspoon, "tsp.": UnitTeaspoon,
	"tablespoon": UnitTablespoon, "tablespoons": UnitTablespoon, "tbsp": UnitTablespoon, "tbsps": UnitTablespoon,
	"tbsp.": UnitTablespoon, "tbs": UnitTablespoon, "tbl": UnitTablespoon,
	"cup": UnitCup, "cups": UnitCup, "c": UnitCup, "c.": UnitCup,
	"ounce": UnitOunce, "ounces": UnitOunce, "oz": UnitOunce, "oz.": UnitOunce,
	"pound": UnitPound, "pounds": UnitPound, "lb": UnitPound, "lbs": UnitPound, "lb.": UnitPound,
	"gram": UnitGram, "grams": UnitGram, "g": UnitGram, "gr": UnitGram,
	"kilogram": UnitKilogram, "kilograms": UnitKilogram, "kg": UnitKilogram, "kgs": UnitKilogram,
	"pint": UnitPint, "pints": UnitPint, "pt": UnitPint,
	"quart": UnitQuart, "quarts": UnitQuart, "qt": UnitQuart,
	"gallon": UnitGallon, "gallons": UnitGallon, "gal": UnitGallon,
	"liter": UnitLiter, "liters": UnitLiter, "litre": UnitLiter, "litres": UnitLiter, "l": UnitLiter,
	"can": UnitCan, "cans": UnitCan,
	"bunch": UnitBunch, "bunches": UnitBunch,
	"piece": UnitPiece, "pieces": UnitPiece, "pc": UnitPiece, "pcs": UnitPiece,
	"pinch": UnitPinch, "pinches": UnitPinch,
	"clove": UnitClove, "cloves": UnitClove,
	"jar": UnitJar, "jars": UnitJar,
	"bottle": UnitBottle, "bottles": UnitBottle,
	"container": UnitContainer, "containers": UnitContainer,
}

// ParseUnit 以別名表查詢單位（不分大小寫）
func ParseUnit(s string) (Unit, bool) {
	u, ok := unitAliases[strings.ToLower(strings.TrimSpace(s))]
	return u, ok
}

// Valid 是否為列舉中的單位
func (u Unit) Valid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

func (u Unit) String() string {
	return string(u)
}
