// Package revenue derives the revenue breakdown of a daily record from its raw inputs.
package revenue

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"hotelperf/server/internal/apperr"
	"hotelperf/server/internal/models"
	"hotelperf/server/internal/numeric"
)

const (
	ServiceChargeRate = 0.10
	GovernmentTaxRate = 0.11
)

// Raw input field names
const (
	RoomLodging        = "room_lodging"
	RebateDiscount     = "rebate_discount"
	Breakfast          = "breakfast"
	RestaurantFood     = "restaurant_food"
	RestaurantBeverage = "restaurant_beverage"
	OtherRoomRevenue   = "other_room_revenue"
	Telephone          = "telephone"
	BusinessCenter     = "business_center"
	OtherIncome        = "other_income"
	SpaTherapy         = "spa_therapy"
	Misc               = "misc"
	AllowanceOther     = "allowance_other"
	APRestaurant       = "ap_restaurant"
	Tips               = "tips"
	RoomAvailable      = "room_available"
	RoomsOccupied      = "rooms_occupied"
	RoomsSold          = "rooms_sold"
)

// RawFields lists every raw numeric input
var RawFields = []string{
	RoomLodging, RebateDiscount,
	Breakfast, RestaurantFood, RestaurantBeverage,
	OtherRoomRevenue, Telephone, BusinessCenter, OtherIncome, SpaTherapy, Misc, AllowanceOther,
	APRestaurant, Tips,
	RoomAvailable, RoomsOccupied, RoomsSold,
}

// nestedGroups are the sub-objects of a derived record
var nestedGroups = []string{"room_details", "restaurant", "other_revenue", "room_stats"}

// derivedFields never survive flattening; they are always recomputed
var derivedFields = map[string]struct{}{
	"total_room_revenue":       {},
	"total_restaurant_revenue": {},
	"total_other_revenue":      {},
	"nett_revenue":             {},
	"service_charge":           {},
	"government_tax":           {},
	"gross_revenue":            {},
	"grand_total_revenue":      {},
	"vacant_rooms":             {},
	"occupancy":                {},
	"average_room_rate":        {},
}

// Flatten turns a document that may contain derived sub-groups back into its raw form.
// Sub-group entries are lifted to the top level, top-level keys win over lifted ones,
// and derived totals are dropped. The input is not modified.
func Flatten(doc map[string]interface{}) map[string]interface{} {
	flat := make(map[string]interface{}, len(doc))

	for _, group := range nestedGroups {
		sub, ok := doc[group].(map[string]interface{})
		if !ok {
			continue
		}
		for k, v := range sub {
			flat[k] = v
		}
	}

	for k, v := range doc {
		if isGroup(k) {
			if _, ok := v.(map[string]interface{}); ok {
				continue
			}
		}
		flat[k] = v
	}

	for k := range derivedFields {
		delete(flat, k)
	}
	return flat
}

func isGroup(key string) bool {
	for _, g := range nestedGroups {
		if g == key {
			return true
		}
	}
	return false
}

// Merge flattens both documents and lays the update's fields over the existing ones
func Merge(existing, update map[string]interface{}) map[string]interface{} {
	merged := Flatten(existing)
	for k, v := range Flatten(update) {
		merged[k] = v
	}
	return merged
}

// Document renders a stored record as the nested document clients see
func Document(rec *models.RevenueRecord) (map[string]interface{}, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal revenue record: %w", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal revenue record: %w", err)
	}
	return doc, nil
}

// Calculate derives a full breakdown from raw fields. Missing or null fields count as 0; any raw field that is
// present but not numeric fails the whole calculation. Identity fields (id, hotel, date) are left zero.
func Calculate(raw map[string]interface{}) (*models.RevenueRecord, error) {
	flat := Flatten(raw)

	in := make(map[string]float64, len(RawFields))
	for _, field := range RawFields {
		v, ok := flat[field]
		if !ok || v == nil {
			continue
		}
		f, err := toFloat(v)
		if err != nil {
			return nil, apperr.Validation("field %q must be numeric: %v", field, err)
		}
		in[field] = f
	}

	totalRoom := in[RoomLodging] - in[RebateDiscount]
	totalRestaurant := in[Breakfast] + in[RestaurantFood] + in[RestaurantBeverage]
	totalOther := in[OtherRoomRevenue] + in[Telephone] + in[BusinessCenter] +
		in[OtherIncome] + in[SpaTherapy] + in[Misc] - in[AllowanceOther]

	nett := totalRoom + totalRestaurant + totalOther
	service := nett * ServiceChargeRate
	tax := nett * GovernmentTaxRate
	gross := nett + service + tax
	grand := gross + in[APRestaurant] + in[Tips]

	var vacant, occupancy, averageRate float64
	if in[RoomAvailable] > 0 {
		vacant = math.Max(in[RoomAvailable]-in[RoomsOccupied], 0)
		occupancy = in[RoomsOccupied] / in[RoomAvailable] * 100
	}
	if in[RoomsSold] > 0 {
		averageRate = totalRoom / in[RoomsSold]
	}

	return &models.RevenueRecord{
		RoomDetails: models.RoomDetails{
			RoomLodging:      in[RoomLodging],
			RebateDiscount:   in[RebateDiscount],
			TotalRoomRevenue: numeric.Round2(totalRoom),
		},
		Restaurant: models.Restaurant{
			Breakfast:              in[Breakfast],
			RestaurantFood:         in[RestaurantFood],
			RestaurantBeverage:     in[RestaurantBeverage],
			TotalRestaurantRevenue: numeric.Round2(totalRestaurant),
		},
		OtherRevenue: models.OtherRevenue{
			OtherRoomRevenue:  in[OtherRoomRevenue],
			Telephone:         in[Telephone],
			BusinessCenter:    in[BusinessCenter],
			OtherIncome:       in[OtherIncome],
			SpaTherapy:        in[SpaTherapy],
			Misc:              in[Misc],
			AllowanceOther:    in[AllowanceOther],
			TotalOtherRevenue: numeric.Round2(totalOther),
		},
		RoomStats: models.RoomStats{
			RoomAvailable:   in[RoomAvailable],
			RoomsOccupied:   in[RoomsOccupied],
			RoomsSold:       in[RoomsSold],
			VacantRooms:     vacant,
			Occupancy:       numeric.Round2(occupancy),
			AverageRoomRate: numeric.Round2(averageRate),
		},
		NettRevenue:       numeric.Round2(nett),
		ServiceCharge:     numeric.Round2(service),
		GovernmentTax:     numeric.Round2(tax),
		GrossRevenue:      numeric.Round2(gross),
		APRestaurant:      in[APRestaurant],
		Tips:              in[Tips],
		GrandTotalRevenue: numeric.Round2(grand),
	}, nil
}

func toFloat(v interface{}) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", n)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %v", f)
	}
	return f, nil
}
