package mls

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Listing is an MLS property in the same shape the API uses for local listings.
type Listing struct {
	MLSNumber     string   `json:"mls_number"`
	ListingID     string   `json:"listing_id,omitempty"`
	Title         string   `json:"title"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	ZipCode       string   `json:"zip_code"`
	Price         float64  `json:"price"`
	Bedrooms      *int     `json:"bedrooms"`
	Bathrooms     *float64 `json:"bathrooms"`
	SquareFeet    *int     `json:"square_feet"`
	PropertyType  string   `json:"property_type"`
	Status        string   `json:"status"`
	Description   string   `json:"description"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	PhotoURL      string   `json:"photo_url,omitempty"`
	Photos        []string `json:"photos"`
	ListingDate   string   `json:"listing_date,omitempty"`
	YearBuilt     *int     `json:"year_built"`
	AgentName     string   `json:"agent_name,omitempty"`
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
	Source        string   `json:"source"`
}

// property is the subset of the RESO Property resource we read.
type property struct {
	ListingKey            string   `json:"ListingKey"`
	ListingID             string   `json:"ListingId"`
	ListPrice             *float64 `json:"ListPrice"`
	UnparsedAddress       string   `json:"UnparsedAddress"`
	StreetNumber          string   `json:"StreetNumber"`
	StreetName            string   `json:"StreetName"`
	StreetSuffix          string   `json:"StreetSuffix"`
	UnitNumber            string   `json:"UnitNumber"`
	City                  string   `json:"City"`
	StateOrProvince       string   `json:"StateOrProvince"`
	PostalCode            string   `json:"PostalCode"`
	BedroomsTotal         *int     `json:"BedroomsTotal"`
	BathroomsTotalInteger *float64 `json:"BathroomsTotalInteger"`
	LivingArea            *float64 `json:"LivingArea"`
	PropertyType          string   `json:"PropertyType"`
	StandardStatus        string   `json:"StandardStatus"`
	PublicRemarks         string   `json:"PublicRemarks"`
	Latitude              *float64 `json:"Latitude"`
	Longitude             *float64 `json:"Longitude"`
	ListingContractDate   string   `json:"ListingContractDate"`
	YearBuilt             *int     `json:"YearBuilt"`
	ListAgentFullName     string   `json:"ListAgentFullName"`
	Media                 []media  `json:"Media"`
}

type media struct {
	MediaURL string `json:"MediaURL"`
	Order    int    `json:"Order"`
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func (p property) toListing() Listing {
	street := joinNonEmpty(" ", p.StreetNumber, p.StreetName, p.StreetSuffix, p.UnitNumber)
	address := street
	if address == "" {
		address = strings.TrimSpace(p.UnparsedAddress)
	}

	l := Listing{
		MLSNumber:    p.ListingKey,
		ListingID:    p.ListingID,
		Address:      address,
		City:         p.City,
		State:        p.StateOrProvince,
		ZipCode:      p.PostalCode,
		Bedrooms:     p.BedroomsTotal,
		Bathrooms:    p.BathroomsTotalInteger,
		PropertyType: p.PropertyType,
		Status:       p.StandardStatus,
		Description:  p.PublicRemarks,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		ListingDate:  p.ListingContractDate,
		YearBuilt:    p.YearBuilt,
		AgentName:    p.ListAgentFullName,
		Photos:       []string{},
		Source:       "paragon",
	}
	if l.MLSNumber == "" {
		l.MLSNumber = p.ListingID
	}
	if p.ListPrice != nil {
		l.Price = *p.ListPrice
	}
	if p.LivingArea != nil {
		sq := int(math.Round(*p.LivingArea))
		l.SquareFeet = &sq
	}
	l.Title = joinNonEmpty(", ", address, p.City)
	if l.Title == "" {
		l.Title = fmt.Sprintf("MLS #%s", l.MLSNumber)
	}

	photos := append([]media(nil), p.Media...)
	sort.SliceStable(photos, func(i, j int) bool { return photos[i].Order < photos[j].Order })
	for _, m := range photos {
		if m.MediaURL != "" {
			l.Photos = append(l.Photos, m.MediaURL)
		}
	}
	if len(l.Photos) > 0 {
		l.PhotoURL = l.Photos[0]
	}
	return l
}

const earthRadiusMiles = 3958.8

// haversine returns the great-circle distance in miles.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(a))
}
