package woocommerce

type Image struct {
	Src string `json:"src"`
}

type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Product is the subset of a WooCommerce product the storefront reads.
// Prices are decimal strings in the store currency.
type Product struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	SKU              string        `json:"sku"`
	Price            string        `json:"price"`
	ShortDescription string        `json:"short_description"`
	Categories       []CategoryRef `json:"categories"`
	Images           []Image       `json:"images"`
}

// Coupon is a WooCommerce coupon. Amount is a decimal string.
type Coupon struct {
	ID           int64  `json:"id"`
	Code         string `json:"code"`
	Amount       string `json:"amount"`
	DiscountType string `json:"discount_type"`
	DateExpires  string `json:"date_expires_gmt,omitempty"`
}

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type LineItem struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal,omitempty"`
	Total     string `json:"total,omitempty"`
}

type ShippingLine struct {
	MethodID    string `json:"method_id"`
	MethodTitle string `json:"method_title"`
	Total       string `json:"total"`
}

type CouponLine struct {
	Code string `json:"code"`
}

type MetaData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Order is the POST /orders payload and response.
type Order struct {
	ID                 int64          `json:"id,omitempty"`
	Status             string         `json:"status,omitempty"`
	Total              string         `json:"total,omitempty"`
	PaymentMethod      string         `json:"payment_method"`
	PaymentMethodTitle string         `json:"payment_method_title"`
	SetPaid            bool           `json:"set_paid"`
	Billing            Address        `json:"billing"`
	Shipping           Address        `json:"shipping"`
	LineItems          []LineItem     `json:"line_items"`
	ShippingLines      []ShippingLine `json:"shipping_lines,omitempty"`
	CouponLines        []CouponLine   `json:"coupon_lines,omitempty"`
	MetaData           []MetaData     `json:"meta_data,omitempty"`
}
