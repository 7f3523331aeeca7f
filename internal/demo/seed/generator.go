package seed

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// CustomerRow is the subset of Customer360 columns the demo extract carries.
// Dates are days since the Unix epoch with the parquet DATE annotation.
type CustomerRow struct {
	Email                      string  `parquet:"email"`
	CustomerKey                string  `parquet:"customer_key"`
	FirstName                  string  `parquet:"first_name"`
	LastName                   string  `parquet:"last_name"`
	City                       string  `parquet:"city"`
	State                      string  `parquet:"state"`
	Country                    string  `parquet:"country"`
	Zipcode                    string  `parquet:"zipcode"`
	AcquisitionDate            int32   `parquet:"acquisition_date,date"`
	LastOrderDate              int32   `parquet:"last_order_date,date"`
	FirstOrderValue            float64 `parquet:"first_order_value"`
	AcquisitionProductCategory string  `parquet:"acquisition_product_category"`
	MostPurchasedProduct       string  `parquet:"most_purchased_product"`
	TotalOrders                int64   `parquet:"total_orders"`
	TotalOrdersOnline          int64   `parquet:"total_orders_online"`
	TotalOrdersStore           int64   `parquet:"total_orders_store"`
	TotalQuantitySold          int64   `parquet:"total_quantity_sold"`
	TotalNetSales              float64 `parquet:"total_net_sales"`
	NetSalesOnline             float64 `parquet:"net_sales_online"`
	NetSalesStore              float64 `parquet:"net_sales_store"`
	TotalDiscounts             float64 `parquet:"total_discounts"`
	TotalRefunds               float64 `parquet:"total_refunds"`
	LTV13Months                float64 `parquet:"ltv_13_months"`
	AOV13Months                float64 `parquet:"aov_13_months"`
}

type location struct {
	city, state, zip string
}

var (
	firstNames = []string{"Ava", "Liam", "Mia", "Noah", "Zoe", "Ethan", "Ivy", "Lucas", "Nora", "Owen"}
	lastNames  = []string{"Garcia", "Smith", "Nguyen", "Patel", "Kim", "Brown", "Lopez", "Miller", "Davis", "Wilson"}
	locations  = []location{
		{"Austin", "TX", "78701"}, {"Houston", "TX", "77002"}, {"Los Angeles", "CA", "90012"},
		{"San Diego", "CA", "92101"}, {"New York", "NY", "10001"}, {"Seattle", "WA", "98101"},
		{"Chicago", "IL", "60601"}, {"Miami", "FL", "33101"}, {"Denver", "CO", "80202"},
	}
	categories = []string{"Sleep", "Bath", "Apparel", "Accessories", "Home"}
	products   = []string{"Weighted Blanket", "Linen Sheet Set", "Waffle Robe", "Silk Eye Mask", "Down Pillow"}
)

// Generator produces deterministic synthetic customers for a given seed.
type Generator struct {
	rnd      *rand.Rand
	sequence int64
	now      func() time.Time
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rnd: rand.New(rand.NewSource(seed)),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (g *Generator) NextCustomer() CustomerRow {
	g.sequence++
	first := pickOne(g.rnd, firstNames)
	last := pickOne(g.rnd, lastNames)
	loc := locations[g.rnd.Intn(len(locations))]

	today := g.now().Truncate(24 * time.Hour)
	acquired := today.AddDate(0, 0, -(30 + g.rnd.Intn(3*365)))
	sinceAcquired := int(today.Sub(acquired).Hours() / 24)
	lastOrder := acquired.AddDate(0, 0, g.rnd.Intn(sinceAcquired+1))

	orders := int64(1 + g.rnd.Intn(12))
	storeOrders := int64(g.rnd.Intn(int(orders) + 1))
	onlineOrders := orders - storeOrders
	aov := 25 + g.rnd.Float64()*175
	netSales := round2(float64(orders) * aov)
	storeShare := float64(storeOrders) / float64(orders)

	return CustomerRow{
		Email:                      fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), g.sequence),
		CustomerKey:                fmt.Sprintf("cust-%08d", g.sequence),
		FirstName:                  first,
		LastName:                   last,
		City:                       loc.city,
		State:                      loc.state,
		Country:                    "US",
		Zipcode:                    loc.zip,
		AcquisitionDate:            epochDays(acquired),
		LastOrderDate:              epochDays(lastOrder),
		FirstOrderValue:            round2(aov * (0.6 + g.rnd.Float64()*0.8)),
		AcquisitionProductCategory: pickOne(g.rnd, categories),
		MostPurchasedProduct:       pickOne(g.rnd, products),
		TotalOrders:                orders,
		TotalOrdersOnline:          onlineOrders,
		TotalOrdersStore:           storeOrders,
		TotalQuantitySold:          orders * int64(1+g.rnd.Intn(3)),
		TotalNetSales:              netSales,
		NetSalesOnline:             round2(netSales * (1 - storeShare)),
		NetSalesStore:              round2(netSales * storeShare),
		TotalDiscounts:             round2(netSales * g.rnd.Float64() * 0.15),
		TotalRefunds:               round2(netSales * g.rnd.Float64() * 0.05),
		LTV13Months:                round2(netSales * (0.3 + g.rnd.Float64()*0.7)),
		AOV13Months:                round2(aov),
	}
}

func epochDays(t time.Time) int32 {
	return int32(t.UTC().Unix() / 86400)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func pickOne(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}
