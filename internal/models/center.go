package models

import (
	"regexp"
	"strings"
)

// CityCode identifies the city a center belongs to.
type CityCode string

const (
	CityMDA CityCode = "MDA"
	CityNGP CityCode = "NGP"
)

var cityCodePattern = regexp.MustCompile(`MDA|NGP`)

// CityCodeFromID extracts the city code embedded in a volunteer id such as 25MDA177.
func CityCodeFromID(id string) (CityCode, bool) {
	match := cityCodePattern.FindString(strings.ToUpper(id))
	if match == "" {
		return "", false
	}
	return CityCode(match), true
}

// Center is a physical education site.
type Center struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CityCode  CityCode `json:"cityCode"`
	ShortCode string   `json:"shortCode"`
}

// Centers is the static catalog of sites.
var Centers = []Center{
	{ID: "MDA-C1", Name: "Madhapur Community Center", CityCode: CityMDA, ShortCode: "MDC"},
	{ID: "MDA-C2", Name: "Madhapur Slum School", CityCode: CityMDA, ShortCode: "MDS"},
	{ID: "NGP-C1", Name: "Nagpur Railway Colony", CityCode: CityNGP, ShortCode: "NRC"},
	{ID: "NGP-C2", Name: "Nagpur Basti Shala", CityCode: CityNGP, ShortCode: "NBS"},
	{ID: "NGP-C3", Name: "Nagpur Gokulpeth", CityCode: CityNGP, ShortCode: "NGK"},
}

// CentersForCity returns the catalog entries of a city in catalog order.
func CentersForCity(code CityCode) []Center {
	result := make([]Center, 0, len(Centers))
	for _, c := range Centers {
		if c.CityCode == code {
			result = append(result, c)
		}
	}
	return result
}

// FindCenter looks a center up by id.
func FindCenter(id string) (Center, bool) {
	for _, c := range Centers {
		if c.ID == id {
			return c, true
		}
	}
	return Center{}, false
}

// SameCity reports whether both ids are catalog centers of one city.
func SameCity(a, b string) bool {
	first, ok := FindCenter(a)
	if !ok {
		return false
	}
	second, ok := FindCenter(b)
	return ok && first.CityCode == second.CityCode
}

// CityCenterIDs lists the ids of every center sharing a city with centerID.
// An id outside the catalog yields only itself.
func CityCenterIDs(centerID string) []string {
	center, ok := FindCenter(centerID)
	if !ok {
		return []string{centerID}
	}
	centers := CentersForCity(center.CityCode)
	ids := make([]string, 0, len(centers))
	for _, c := range centers {
		ids = append(ids, c.ID)
	}
	return ids
}
