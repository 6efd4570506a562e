package article

import "strings"

var sourceTypes = map[string]SourceType{
	// Wire services
	"Associated Press": SourceWire,
	"AP":               SourceWire,
	"Reuters":          SourceWire,
	"UPI":              SourceWire,
	"AFP":              SourceWire,

	// National outlets
	"The New York Times":      SourceNational,
	"Washington Post":         SourceNational,
	"CNN":                     SourceNational,
	"Fox News":                SourceNational,
	"NBC News":                SourceNational,
	"CBS News":                SourceNational,
	"ABC News":                SourceNational,
	"NPR":                     SourceNational,
	"USA Today":               SourceNational,
	"The Wall Street Journal": SourceNational,
	"Los Angeles Times":       SourceNational,
	"Politico":                SourceNational,
	"The Hill":                SourceNational,
	"Bloomberg":               SourceNational,
	"MSNBC":                   SourceNational,
	"The Guardian":            SourceNational,
	"BBC News":                SourceNational,
	"HuffPost":                SourceNational,
	"Axios":                   SourceNational,
	"The Daily Beast":         SourceNational,
	"Vox":                     SourceNational,
	"BuzzFeed News":           SourceNational,

	// Idaho local
	"Idaho Statesman":           SourceLocal,
	"Times-News":                SourceLocal,
	"Idaho Press":               SourceLocal,
	"Idaho Press-Tribune":       SourceLocal,
	"Post Register":             SourceLocal,
	"Lewiston Tribune":          SourceLocal,
	"Coeur d'Alene Press":       SourceLocal,
	"Moscow-Pullman Daily News": SourceLocal,
	"Idaho Mountain Express":    SourceLocal,
	"Idaho State Journal":       SourceLocal,
	"Bonner County Daily Bee":   SourceLocal,
	"Shoshone News-Press":       SourceLocal,
	"Idaho County Free Press":   SourceLocal,
	"Star-News":                 SourceLocal,
	"Mini-Cassia Times-News":    SourceLocal,
	"BoiseDev":                  SourceLocal,
	"Idaho Capital Sun":         SourceLocal,

	// Idaho broadcast
	"KTVB":                    SourceBroadcast,
	"KIVI":                    SourceBroadcast,
	"KBOI":                    SourceBroadcast,
	"KMVT":                    SourceBroadcast,
	"KIDK":                    SourceBroadcast,
	"KIFI":                    SourceBroadcast,
	"KLEW":                    SourceBroadcast,
	"Idaho News 6":            SourceBroadcast,
	"Idaho Public Television": SourceBroadcast,
	"Idaho Reports":           SourceBroadcast,

	// Pacific Northwest regional
	"The Oregonian":           SourceRegional,
	"Seattle Times":           SourceRegional,
	"Spokesman-Review":        SourceRegional,
	"Yakima Herald":           SourceRegional,
	"Tri-City Herald":         SourceRegional,
	"Salt Lake Tribune":       SourceRegional,
	"Deseret News":            SourceRegional,
	"Great Falls Tribune":     SourceRegional,
	"Missoulian":              SourceRegional,
	"Bozeman Daily Chronicle": SourceRegional,

	"Idaho Education News": SourceTrade,
	"Blue Review":          SourceOpinion,
}

var foldedSourceTypes = func() map[string]SourceType {
	folded := make(map[string]SourceType, len(sourceTypes))
	for name, sourceType := range sourceTypes {
		folded[Fold(name)] = sourceType
	}
	return folded
}()

// containedSourceTypes are the types whose catalog names also match inside a
// longer outlet name, such as "KTVB.com". Earlier types win.
var containedSourceTypes = []SourceType{SourceLocal, SourceBroadcast}

var foldedNamesByType = func() map[SourceType][]string {
	byType := make(map[SourceType][]string)
	for name, sourceType := range foldedSourceTypes {
		byType[sourceType] = append(byType[sourceType], name)
	}
	return byType
}()

// ClassifySource maps an outlet name to its source type. Names are matched
// exactly first, then case-insensitively, then local and broadcast names are
// looked for inside the outlet name. Unknown outlets are SourceUnknown.
func ClassifySource(name string) SourceType {
	if sourceType, ok := sourceTypes[name]; ok {
		return sourceType
	}

	folded := Fold(strings.TrimSpace(name))
	if sourceType, ok := foldedSourceTypes[folded]; ok {
		return sourceType
	}

	for _, sourceType := range containedSourceTypes {
		for _, known := range foldedNamesByType[sourceType] {
			if strings.Contains(folded, known) {
				return sourceType
			}
		}
	}
	return SourceUnknown
}
