package geo

import (
	"regexp"
)

type Region struct {
	Name     string
	Counties []string
	Cities   []string
}

// Regions are listed north to south, then east.
var Regions = []Region{
	{
		Name:     "Northern Idaho",
		Counties: []string{"Boundary", "Bonner", "Kootenai", "Shoshone", "Benewah"},
		Cities:   []string{"Coeur d'Alene", "Sandpoint", "Post Falls", "Moscow", "Lewiston", "Bonners Ferry", "Kellogg", "Wallace"},
	},
	{
		Name:     "North Central Idaho",
		Counties: []string{"Latah", "Nez Perce", "Lewis", "Clearwater", "Idaho"},
		Cities:   []string{"Moscow", "Lewiston", "Grangeville", "Orofino", "Kamiah"},
	},
	{
		Name:     "Southwestern Idaho",
		Counties: []string{"Ada", "Canyon", "Gem", "Boise", "Owyhee", "Elmore", "Payette", "Washington", "Adams", "Valley"},
		Cities:   []string{"Boise", "Nampa", "Meridian", "Caldwell", "Eagle", "Star", "Kuna", "Mountain Home", "Emmett", "McCall"},
	},
	{
		Name:     "South Central Idaho",
		Counties: []string{"Twin Falls", "Jerome", "Gooding", "Lincoln", "Minidoka", "Cassia", "Blaine", "Camas"},
		Cities:   []string{"Twin Falls", "Jerome", "Burley", "Rupert", "Hailey", "Ketchum", "Sun Valley", "Gooding"},
	},
	{
		Name:     "Southeastern Idaho",
		Counties: []string{"Bannock", "Bingham", "Power", "Oneida", "Franklin", "Bear Lake", "Caribou"},
		Cities:   []string{"Pocatello", "Blackfoot", "American Falls", "Preston", "Montpelier", "Soda Springs"},
	},
	{
		Name:     "Eastern Idaho",
		Counties: []string{"Bonneville", "Jefferson", "Madison", "Teton", "Fremont", "Clark", "Lemhi", "Custer", "Butte"},
		Cities:   []string{"Idaho Falls", "Rexburg", "Rigby", "Driggs", "St. Anthony", "Salmon", "Challis", "Arco"},
	},
}

type Synonym struct {
	Term    string
	Targets []string
}

var Synonyms = []Synonym{
	{Term: "Gem State", Targets: []string{"Idaho"}},
	{Term: "CDA", Targets: []string{"Coeur d'Alene"}},
	{Term: "Treasure Valley", Targets: []string{"Boise", "Nampa", "Meridian", "Caldwell", "Eagle", "Star", "Kuna"}},
	{Term: "Magic Valley", Targets: []string{"Twin Falls", "Jerome", "Burley", "Rupert"}},
	{Term: "Wood River Valley", Targets: []string{"Hailey", "Ketchum", "Sun Valley", "Bellevue"}},
	{Term: "Palouse", Targets: []string{"Moscow", "Pullman"}},
	{Term: "IC", Targets: []string{"Idaho County"}},
}

type Facility struct {
	Term   string
	Name   string
	City   string
	County string
}

var Facilities = []Facility{
	{Term: "ISU", Name: "Idaho State University", City: "Pocatello", County: "Bannock"},
	{Term: "Idaho State University", City: "Pocatello", County: "Bannock"},
	{Term: "BSU", Name: "Boise State University", City: "Boise", County: "Ada"},
	{Term: "Boise State", Name: "Boise State University", City: "Boise", County: "Ada"},
	{Term: "Boise State University", City: "Boise", County: "Ada"},
	{Term: "U of I", Name: "University of Idaho", City: "Moscow", County: "Latah"},
	{Term: "University of Idaho", City: "Moscow", County: "Latah"},
	{Term: "BYU-Idaho", Name: "BYU-Idaho", City: "Rexburg", County: "Madison"},
	{Term: "College of Idaho", City: "Caldwell", County: "Canyon"},
	{Term: "NIC", Name: "North Idaho College", City: "Coeur d'Alene", County: "Kootenai"},
	{Term: "North Idaho College", City: "Coeur d'Alene", County: "Kootenai"},
	{Term: "Mountain Home AFB", Name: "Mountain Home Air Force Base", City: "Mountain Home", County: "Elmore"},
	{Term: "Mountain Home Air Force Base", City: "Mountain Home", County: "Elmore"},
	{Term: "INL", Name: "Idaho National Laboratory", City: "Idaho Falls", County: "Butte"},
	{Term: "Idaho National Laboratory", City: "Idaho Falls", County: "Butte"},
	{Term: "Gowen Field", Name: "Gowen Field", City: "Boise", County: "Ada"},
	{Term: "Idaho State Capitol", City: "Boise", County: "Ada"},
}

// DisplayName is the canonical facility name recorded as a matched location.
func (f Facility) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Term
}

type FalsePositive struct {
	Pattern *regexp.Regexp
	Actual  string
}

// FalsePositives are phrases that look like Idaho places but are not. Any
// hit zeroes the score.
var FalsePositives = []FalsePositive{
	{Pattern: regexp.MustCompile(`(?i)northwest ice processing center`), Actual: "Tacoma, WA"},
	{Pattern: regexp.MustCompile(`(?i)northwest detention center`), Actual: "Tacoma, WA"},
	{Pattern: regexp.MustCompile(`(?i)idaho street`), Actual: "street name, not state"},
	{Pattern: regexp.MustCompile(`(?i)idaho avenue`), Actual: "street name, not state"},
	{Pattern: regexp.MustCompile(`(?i)idaho road`), Actual: "street name, not state"},
	{Pattern: regexp.MustCompile(`(?i)idaho boulevard`), Actual: "street name, not state"},
	{Pattern: regexp.MustCompile(`(?i)idaho springs`), Actual: "Colorado"},
	{Pattern: regexp.MustCompile(`(?i)idaho city(?:[^,]|$)`), Actual: "could be Idaho City, ID, check context"},
}

// CountySeats maps a city to the county it sits in.
var CountySeats = map[string]string{
	"Boise":          "Ada",
	"Nampa":          "Canyon",
	"Caldwell":       "Canyon",
	"Meridian":       "Ada",
	"Idaho Falls":    "Bonneville",
	"Pocatello":      "Bannock",
	"Twin Falls":     "Twin Falls",
	"Coeur d'Alene":  "Kootenai",
	"Lewiston":       "Nez Perce",
	"Moscow":         "Latah",
	"Rexburg":        "Madison",
	"Blackfoot":      "Bingham",
	"Jerome":         "Jerome",
	"Burley":         "Cassia",
	"Rupert":         "Minidoka",
	"Mountain Home":  "Elmore",
	"Emmett":         "Gem",
	"Hailey":         "Blaine",
	"Sandpoint":      "Bonner",
	"Post Falls":     "Kootenai",
	"Eagle":          "Ada",
	"Star":           "Ada",
	"Kuna":           "Ada",
	"Grangeville":    "Idaho",
	"Salmon":         "Lemhi",
	"Driggs":         "Teton",
	"Preston":        "Franklin",
	"American Falls": "Power",
	"Soda Springs":   "Caribou",
	"Challis":        "Custer",
	"Arco":           "Butte",
	"Bonners Ferry":  "Boundary",
	"St. Anthony":    "Fremont",
	"Orofino":        "Clearwater",
	"Gooding":        "Gooding",
}

type SourceOrigin struct {
	State  string
	City   string
	County string
}

// SourceOrigins maps outlet names to where they are based.
var SourceOrigins = map[string]SourceOrigin{
	"Idaho Statesman":           {State: "Idaho", City: "Boise", County: "Ada"},
	"Times-News":                {State: "Idaho", City: "Twin Falls", County: "Twin Falls"},
	"Idaho Press":               {State: "Idaho", City: "Nampa", County: "Canyon"},
	"Post Register":             {State: "Idaho", City: "Idaho Falls", County: "Bonneville"},
	"Lewiston Tribune":          {State: "Idaho", City: "Lewiston", County: "Nez Perce"},
	"Coeur d'Alene Press":       {State: "Idaho", City: "Coeur d'Alene", County: "Kootenai"},
	"Moscow-Pullman Daily News": {State: "Idaho", City: "Moscow", County: "Latah"},
	"Idaho Mountain Express":    {State: "Idaho", City: "Ketchum", County: "Blaine"},
	"Idaho State Journal":       {State: "Idaho", City: "Pocatello", County: "Bannock"},
	"Bonner County Daily Bee":   {State: "Idaho", City: "Sandpoint", County: "Bonner"},
	"KTVB":                      {State: "Idaho", City: "Boise", County: "Ada"},
	"KIVI":                      {State: "Idaho", City: "Nampa", County: "Canyon"},
	"KBOI":                      {State: "Idaho", City: "Boise", County: "Ada"},
	"KMVT":                      {State: "Idaho", City: "Twin Falls", County: "Twin Falls"},
	"KIFI":                      {State: "Idaho", City: "Idaho Falls", County: "Bonneville"},
	"BoiseDev":                  {State: "Idaho", City: "Boise", County: "Ada"},
	"Idaho Capital Sun":         {State: "Idaho", City: "Boise", County: "Ada"},
	"Spokesman-Review":          {State: "Washington", City: "Spokane"},
}

// denseStates get the statewide county and city sweep.
var denseStates = map[string]bool{
	"idaho": true,
}

// AllCounties and AllCities flatten Regions in order, keeping repeats so a
// place listed under two regions is counted for each.
var (
	AllCounties = flatten(func(r Region) []string { return r.Counties })
	AllCities   = flatten(func(r Region) []string { return r.Cities })
)

func flatten(pick func(Region) []string) []string {
	var all []string
	for _, r := range Regions {
		all = append(all, pick(r)...)
	}
	return all
}
