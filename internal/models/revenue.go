package models

import "time"

// RevenueRecord is one day of operational revenue for a hotel. Raw inputs are stored as submitted;
// totals are always derived from them.
type RevenueRecord struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	HotelID uint   `json:"hotel_id" gorm:"not null;index"`
	Date    string `json:"date" gorm:"not null;index"`

	RoomDetails  RoomDetails  `json:"room_details" gorm:"embedded;embeddedPrefix:room_"`
	Restaurant   Restaurant   `json:"restaurant" gorm:"embedded;embeddedPrefix:restaurant_"`
	OtherRevenue OtherRevenue `json:"other_revenue" gorm:"embedded;embeddedPrefix:other_"`
	RoomStats    RoomStats    `json:"room_stats" gorm:"embedded;embeddedPrefix:stats_"`

	NettRevenue       float64 `json:"nett_revenue"`
	ServiceCharge     float64 `json:"service_charge"`
	GovernmentTax     float64 `json:"government_tax"`
	GrossRevenue      float64 `json:"gross_revenue"`
	APRestaurant      float64 `json:"ap_restaurant"`
	Tips              float64 `json:"tips"`
	GrandTotalRevenue float64 `json:"grand_total_revenue"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RoomDetails struct {
	RoomLodging      float64 `json:"room_lodging"`
	RebateDiscount   float64 `json:"rebate_discount"`
	TotalRoomRevenue float64 `json:"total_room_revenue"`
}

type Restaurant struct {
	Breakfast              float64 `json:"breakfast"`
	RestaurantFood         float64 `json:"restaurant_food"`
	RestaurantBeverage     float64 `json:"restaurant_beverage"`
	TotalRestaurantRevenue float64 `json:"total_restaurant_revenue"`
}

type OtherRevenue struct {
	OtherRoomRevenue  float64 `json:"other_room_revenue"`
	Telephone         float64 `json:"telephone"`
	BusinessCenter    float64 `json:"business_center"`
	OtherIncome       float64 `json:"other_income"`
	SpaTherapy        float64 `json:"spa_therapy"`
	Misc              float64 `json:"misc"`
	AllowanceOther    float64 `json:"allowance_other"`
	TotalOtherRevenue float64 `json:"total_other_revenue"`
}

type RoomStats struct {
	RoomAvailable   float64 `json:"room_available"`
	RoomsOccupied   float64 `json:"rooms_occupied"`
	RoomsSold       float64 `json:"rooms_sold"`
	VacantRooms     float64 `json:"vacant_rooms"`
	Occupancy       float64 `json:"occupancy"`
	AverageRoomRate float64 `json:"average_room_rate"`
}

// RevenueDiagram is the per-record revenue series of one hotel
type RevenueDiagram struct {
	Dates             []string  `json:"dates"`
	RoomRevenue       []float64 `json:"room_revenue"`
	RestaurantRevenue []float64 `json:"restaurant_revenue"`
	OtherRevenue      []float64 `json:"other_revenue"`
	NettRevenue       []float64 `json:"nett_revenue"`
	GrossRevenue      []float64 `json:"gross_revenue"`
	GrandTotalRevenue []float64 `json:"grand_total_revenue"`
}
