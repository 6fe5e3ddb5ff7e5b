package sectors

// DefaultSector is the secteur the built-in table assigns
const DefaultSector = "Taroudant"

// defaultZRs are the technical units of the Taroudant perimeter
var defaultZRs = []string{
	"AIG-IGH00", "AIG-IGH31", "AIZ-AIZ00", "AIZ-AIZ01", "ALZ-ALZ00",
	"ALZ-ALZ01", "ALZ-ALZ02", "AOB-OBR00", "AOB-OBR01", "AOB-OBR02",
	"AOB-OBR11", "ATL-TAL00", "ATL-TAL42", "ATME-ATM00", "ATR-TAR00",
	"ATR-TAR01", "ATR-TAR02", "ATR-TAR03", "ATR-TAR04", "ATR-TAR05",
	"ATR-TAR06", "ATR-TAR07", "ATR-TAR08", "ATR-TAR09", "ATR-TAR11",
	"ATR-TAR12", "ATR-TAR13", "ATR-TAR14", "ATR-TAR15", "ATR-TAR17",
	"ATR-TAR18", "ATR-TAR33", "ATR-TAR45", "ATR-TAR56", "OAIG-ZO",
	"OAIZ-ZO", "OAMTR01-ZO", "OAMTR02-ZO", "OAMTR04-ZO", "OAMTR05-ZO",
	"OAMTR08-ZO", "OAMTR10-ZO", "OAMTR11-ZO", "OAMTR14-ZO", "OAMTR15-ZO",
	"OAOB-ZO", "OAOB37-ZO", "OATIG-ZO", "OATL-ZO", "OATL42-ZO",
	"OATNO-ZO", "OATR-ZO", "OATR35-ZO", "OATR42-ZO", "OATR59-ZO",
}

// DefaultMapping returns the built-in ZR to secteur table
func DefaultMapping() map[string]string {
	m := make(map[string]string, len(defaultZRs))
	for _, zr := range defaultZRs {
		m[zr] = DefaultSector
	}
	return m
}

// DefaultZRs returns the ZRs of the built-in table
func DefaultZRs() []string {
	return append([]string(nil), defaultZRs...)
}
