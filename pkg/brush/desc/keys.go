package desc

// keyNames maps the packed 4-character property codes used by zero-length
// compact strings to their readable names.
var keyNames = map[string]string{
	"Angl": "angle",
	"Brsh": "brush",
	"Cnt ": "count",
	"Dmtr": "diameter",
	"Dpth": "depth",
	"Drct": "direction",
	"Fthr": "feather",
	"FlpX": "flipX",
	"FlpY": "flipY",
	"Hrdn": "hardness",
	"Idnt": "identifier",
	"Intr": "interpolation",
	"Invr": "invert",
	"Jttr": "jitter",
	"Md  ": "mode",
	"Mnm ": "minimum",
	"Mxm ": "maximum",
	"Nm  ": "name",
	"Nose": "noise",
	"Opct": "opacity",
	"Ornt": "orientation",
	"Rndn": "roundness",
	"Rpt ": "repeat",
	"Scl ": "scale",
	"Spcn": "spacing",
	"Sz  ": "size",
	"Tlrn": "tolerance",
	"Txtr": "texture",
	"Wtdg": "wetEdges",
}

// KeyName resolves a packed 4-character property code, falling back to the
// raw characters when the code is not in the dictionary.
func KeyName(code string) string {
	if name, ok := keyNames[code]; ok {
		return name
	}
	return code
}
