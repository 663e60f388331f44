package controllers

import (
	"time"

	"github.com/angelmondragon/capshop-backend/internal/cart"
	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/internal/customize"
	"github.com/angelmondragon/capshop-backend/internal/discounts"
	"github.com/angelmondragon/capshop-backend/internal/orders"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type productResponse struct {
	ID                string                       `json:"id"`
	Title             string                       `json:"title"`
	Slug              string                       `json:"slug"`
	ProductType       enums.ProductType            `json:"product_type"`
	Price             string                       `json:"price"`
	AvailableQuantity int                          `json:"available_quantity"`
	InStock           bool                         `json:"in_stock"`
	Images            []string                     `json:"images"`
	Description       string                       `json:"description,omitempty"`
	Custom            *catalog.CustomConfiguration `json:"custom_product,omitempty"`
}

func newProductResponse(p catalog.Product) productResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	var custom *catalog.CustomConfiguration
	if p.Custom != nil {
		stripped := p.Custom.WithoutArtwork()
		custom = &stripped
	}
	return productResponse{
		ID:                p.ID,
		Title:             p.Title,
		Slug:              p.Slug,
		ProductType:       p.ProductType,
		Price:             money(p.Price),
		AvailableQuantity: p.AvailableQuantity,
		InStock:           p.AvailableQuantity > 0,
		Images:            images,
		Description:       p.Description,
		Custom:            custom,
	}
}

type cartLineResponse struct {
	Product   productResponse `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal string          `json:"line_total"`
	CanAdd    bool            `json:"can_add_more"`
}

type cartResponse struct {
	SessionID  string             `json:"session_id"`
	Lines      []cartLineResponse `json:"lines"`
	ItemCount  int                `json:"item_count"`
	Subtotal   string             `json:"subtotal"`
	Discount   string             `json:"discount"`
	Total      string             `json:"total"`
	PromoCode  string             `json:"promo_code"`
	PromoError string             `json:"promo_error,omitempty"`
	Message    string             `json:"message,omitempty"`
}

func newCartResponse(sessionID string, snap cart.Snapshot) cartResponse {
	lines := make([]cartLineResponse, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		lines = append(lines, cartLineResponse{
			Product:   newProductResponse(l.Product),
			Quantity:  l.Quantity,
			LineTotal: money(l.Total()),
			CanAdd:    l.Quantity < l.Product.AvailableQuantity,
		})
	}
	return cartResponse{
		SessionID:  sessionID,
		Lines:      lines,
		ItemCount:  snap.ItemCount,
		Subtotal:   money(snap.Subtotal),
		Discount:   money(snap.Discount),
		Total:      money(snap.Total),
		PromoCode:  snap.PromoCode,
		PromoError: snap.PromoError,
	}
}

type customizationResponse struct {
	CategoryID    string                  `json:"category_id"`
	CategoryTitle string                  `json:"category_title"`
	Mode          enums.CustomizationMode `json:"mode"`
	OptionID      string                  `json:"option_id,omitempty"`
	OptionName    string                  `json:"option_name,omitempty"`
	OptionColor   string                  `json:"option_color,omitempty"`
	OptionSize    string                  `json:"option_size,omitempty"`
	Placement     enums.Placement         `json:"placement,omitempty"`
	Text          string                  `json:"text,omitempty"`
	HasImage      bool                    `json:"has_image"`
	Notes         string                  `json:"notes,omitempty"`
	Price         string                  `json:"price"`
}

func newCustomizationResponses(items []customize.SelectedCustomization) []customizationResponse {
	out := make([]customizationResponse, 0, len(items))
	for _, sc := range items {
		out = append(out, customizationResponse{
			CategoryID:    sc.CategoryID,
			CategoryTitle: sc.CategoryTitle,
			Mode:          sc.Mode,
			OptionID:      sc.OptionID,
			OptionName:    sc.OptionName,
			OptionColor:   sc.OptionColor,
			OptionSize:    sc.OptionSize,
			Placement:     sc.Placement,
			Text:          sc.Text,
			HasImage:      sc.Image != "",
			Notes:         sc.Notes,
			Price:         money(sc.Price),
		})
	}
	return out
}

type configuratorResponse struct {
	Stage                customize.Stage                 `json:"stage"`
	BaseHat              catalog.BaseHat                 `json:"base_hat"`
	SelectedColor        string                          `json:"selected_color"`
	SelectedSize         string                          `json:"selected_size"`
	CompatibleCategories []catalog.CustomizationCategory `json:"compatible_categories"`
	Category             *catalog.CustomizationCategory  `json:"category,omitempty"`
	Mode                 enums.CustomizationMode         `json:"mode,omitempty"`
	Option               *catalog.PredefinedOption       `json:"option,omitempty"`
	OptionColor          string                          `json:"option_color,omitempty"`
	OptionSize           string                          `json:"option_size,omitempty"`
	Placement            enums.Placement                 `json:"placement,omitempty"`
	Text                 string                          `json:"text,omitempty"`
	HasImage             bool                            `json:"has_image"`
	Notes                string                          `json:"notes,omitempty"`
	PendingPrice         string                          `json:"pending_price"`
	Customizations       []customizationResponse         `json:"customizations"`
	Total                string                          `json:"total"`
}

func newConfiguratorResponse(st customize.State) configuratorResponse {
	categories := st.CompatibleCategories
	if categories == nil {
		categories = []catalog.CustomizationCategory{}
	}
	return configuratorResponse{
		Stage:                st.Stage,
		BaseHat:              st.BaseHat,
		SelectedColor:        st.SelectedColor,
		SelectedSize:         st.SelectedSize,
		CompatibleCategories: categories,
		Category:             st.Category,
		Mode:                 st.Mode,
		Option:               st.Option,
		OptionColor:          st.OptionColor,
		OptionSize:           st.OptionSize,
		Placement:            st.Placement,
		Text:                 st.Text,
		HasImage:             st.HasImage,
		Notes:                st.Notes,
		PendingPrice:         money(st.PendingPrice),
		Customizations:       newCustomizationResponses(st.Customizations),
		Total:                money(st.Total),
	}
}

type discountValidationResponse struct {
	Valid          bool               `json:"valid"`
	DiscountType   enums.DiscountType `json:"discountType"`
	DiscountAmount string             `json:"discountAmount"`
}

type discountCodeResponse struct {
	ID              string             `json:"id"`
	Code            string             `json:"code"`
	DiscountType    enums.DiscountType `json:"discount_type"`
	DiscountAmount  string             `json:"discount_amount"`
	ValidFrom       time.Time          `json:"valid_from"`
	ValidTo         time.Time          `json:"valid_to"`
	MinimumPurchase *string            `json:"minimum_purchase,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

func newDiscountCodeResponse(d discounts.DiscountCode) discountCodeResponse {
	out := discountCodeResponse{
		ID:             d.ID.String(),
		Code:           d.Code,
		DiscountType:   d.DiscountType,
		DiscountAmount: money(d.DiscountAmount),
		ValidFrom:      d.ValidFrom,
		ValidTo:        d.ValidTo,
		CreatedAt:      d.CreatedAt,
	}
	if d.MinimumPurchase.Valid {
		minimum := money(d.MinimumPurchase.Decimal)
		out.MinimumPurchase = &minimum
	}
	return out
}

type orderItemResponse struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Custom    bool   `json:"custom"`
}

type orderResponse struct {
	ID              string                  `json:"id"`
	OrderNumber     string                  `json:"order_number"`
	SessionID       string                  `json:"session_id"`
	Status          enums.OrderStatus       `json:"status"`
	PaymentStatus   enums.PaymentStatus     `json:"payment_status"`
	Currency        enums.Currency          `json:"currency"`
	DiscountCode    string                  `json:"discount_code,omitempty"`
	Subtotal        string                  `json:"subtotal"`
	Discount        string                  `json:"discount"`
	AmountTotal     string                  `json:"amount_total"`
	CustomerName    string                  `json:"customer_name,omitempty"`
	CustomerEmail   string                  `json:"customer_email,omitempty"`
	ShippingAddress *orders.Address         `json:"shipping_address,omitempty"`
	Items           []orderItemResponse     `json:"items"`
	ItemCount       int                     `json:"item_count"`
	CustomProducts  []customProductResponse `json:"custom_products,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}

type customProductResponse struct {
	ID            string                      `json:"id"`
	ProductID     string                      `json:"product_id"`
	OrderNumber   string                      `json:"order_number,omitempty"`
	Title         string                      `json:"title"`
	TotalPrice    string                      `json:"total_price"`
	Quantity      int                         `json:"quantity"`
	Status        enums.CustomProductStatus   `json:"status"`
	Configuration catalog.CustomConfiguration `json:"configuration"`
}

func newOrderResponse(o orders.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: it.ProductID,
			Title:     it.Title,
			UnitPrice: money(it.UnitPrice),
			Quantity:  it.Quantity,
			Custom:    it.Custom,
		})
	}
	return orderResponse{
		ID:              o.ID.String(),
		OrderNumber:     o.OrderNumber,
		SessionID:       o.SessionID,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		Currency:        o.Currency,
		DiscountCode:    o.DiscountCode,
		Subtotal:        money(o.Subtotal),
		Discount:        money(o.Discount),
		AmountTotal:     money(o.AmountTotal),
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		ShippingAddress: o.ShippingAddress,
		Items:           items,
		ItemCount:       o.ItemCount(),
		CustomProducts:  newCustomProductResponses(o.CustomProducts, false),
		CreatedAt:       o.CreatedAt,
	}
}

// newFulfillmentOrderResponse is newOrderResponse with the uploaded artwork of
// each custom build included.
func newFulfillmentOrderResponse(o orders.Order) orderResponse {
	out := newOrderResponse(o)
	out.CustomProducts = newCustomProductResponses(o.CustomProducts, true)
	return out
}

func newCustomProductResponses(builds []orders.CustomProduct, withArtwork bool) []customProductResponse {
	if len(builds) == 0 {
		return nil
	}
	out := make([]customProductResponse, 0, len(builds))
	for _, b := range builds {
		cfg := b.Configuration
		if !withArtwork {
			cfg = cfg.WithoutArtwork()
		}
		var number string
		if b.OrderNumber != nil {
			number = *b.OrderNumber
		}
		out = append(out, customProductResponse{
			ID:            b.ID.String(),
			ProductID:     b.ProductID,
			OrderNumber:   number,
			Title:         b.Title,
			TotalPrice:    money(b.TotalPrice),
			Quantity:      b.Quantity,
			Status:        b.Status,
			Configuration: cfg,
		})
	}
	return out
}
