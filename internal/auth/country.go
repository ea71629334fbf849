package auth

import "strings"

// countryCodes is the fixed ISO 3166-1 alpha-2 table the presence packet's
// country byte indexes into (spec §4.7 step 5: "country -> index + 1 in
// the 252-entry country table; default 0"). Index 0 is reserved for
// "unknown"; a known code's CountryCode is its position in this slice + 1.
var countryCodes = strings.Fields(`
AD AE AF AG AI AL AM AN AO AQ AR AS AT AU AW AZ BA BB BD BE BF BG BH BI BJ
BM BN BO BR BS BT BV BW BY BZ CA CC CD CF CG CH CI CK CL CM CN CO CR CS CU
CV CW CX CY CZ DE DJ DK DM DO DZ EC EE EG EH ER ES ET FI FJ FK FM FO FR FX GA
GB GD GE GF GH GI GL GM GN GP GQ GR GS GT GU GW GY HK HM HN HR HT HU ID IE
IL IN IO IQ IR IS IT JM JO JP KE KG KH KI KM KN KP KR KW KY KZ LA LB LC LI
LK LR LS LT LU LV LY MA MC MD MG MH MK ML MM MN MO MP MQ MR MS MT MU MV MW
MX MY MZ NA NC NE NF NG NI NL NO NP NR NU NZ OM PA PE PF PG PH PK PL PM PN
PR PS PT PW PY QA RE RO RU RW SA SB SC SD SE SG SH SI SJ SK SL SM SN SO SR
ST SV SY SZ TC TD TF TG TH TJ TK TM TN TO TL TR TT TV TW TZ UA UG UM US UY
UZ VA VC VE VG VI VN VU WF WS YE YT RS ZA ZM ME ZW A1 A2 O1 AX GG IM JE BL
MF
`)

// CountryIndex resolves an ISO 3166-1 alpha-2 code (case-insensitive) to
// its 1-based table index, or 0 if the code isn't recognized.
func CountryIndex(code string) uint8 {
	code = strings.ToUpper(strings.TrimSpace(code))
	for i, c := range countryCodes {
		if c == code {
			return uint8(i + 1)
		}
	}
	return 0
}
