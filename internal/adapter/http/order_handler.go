package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sidtn/order-read-api/internal/entity"
	"github.com/sidtn/order-read-api/internal/usecase"
)

type OrderHandler struct {
	reader usecase.OrderReader
}

func NewOrderHandler(reader usecase.OrderReader) *OrderHandler {
	return &OrderHandler{reader: reader}
}

// Response DTOs. Monetary fields become float64 here and only here;
// internally they are exact decimals. The float conversion matches the
// wire format of the original service and is a known precision caveat.

type orderResp struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	AddressID int64   `json:"address_id"`
	Quantity  int     `json:"quantity"`
	Status    string  `json:"status"`
	Total     float64 `json:"total"`
	CreatedAt string  `json:"created_at"`
}

type userResp struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	CreatedAt string `json:"created_at"`
}

type addressResp struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	CreatedAt  string  `json:"created_at"`
}

type orderProductResp struct {
	OrderItemID int64   `json:"order_item_id"`
	ProductID   int64   `json:"product_id"`
	Name        string  `json:"name"`
	SKU         string  `json:"sku"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type orderFullResp struct {
	Order    orderResp          `json:"order"`
	User     userResp           `json:"user"`
	Address  addressResp        `json:"address"`
	Products []orderProductResp `json:"products"`
}

func toOrderResp(o *entity.Order) orderResp {
	return orderResp{
		ID:        o.ID,
		UserID:    o.UserID,
		AddressID: o.AddressID,
		Quantity:  o.Quantity,
		Status:    o.Status,
		Total:     o.Total.InexactFloat64(),
		CreatedAt: o.CreatedAt.Format(time.RFC3339Nano),
	}
}

func toOrderFullResp(f *entity.OrderFull) orderFullResp {
	resp := orderFullResp{
		Order: toOrderResp(&f.Order),
		User: userResp{
			ID:        f.User.ID,
			Email:     f.User.Email,
			FullName:  f.User.FullName,
			CreatedAt: f.User.CreatedAt.Format(time.RFC3339Nano),
		},
		Address: addressResp{
			ID:         f.Address.ID,
			UserID:     f.Address.UserID,
			Line1:      f.Address.Line1,
			Line2:      f.Address.Line2,
			City:       f.Address.City,
			State:      f.Address.State,
			PostalCode: f.Address.PostalCode,
			CreatedAt:  f.Address.CreatedAt.Format(time.RFC3339Nano),
		},
		Products: make([]orderProductResp, 0, len(f.Products)),
	}
	for _, p := range f.Products {
		resp.Products = append(resp.Products, orderProductResp{
			OrderItemID: p.OrderItemID,
			ProductID:   p.ProductID,
			Name:        p.Name,
			SKU:         p.SKU,
			Price:       p.Price.InexactFloat64(),
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice.InexactFloat64(),
		})
	}
	return resp
}

func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return 0, false
	}
	return id, true
}

func (h *OrderHandler) GetOrderFull(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	full, err := h.reader.GetFull(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderFullResp(full))
}

func (h *OrderHandler) GetOrderLite(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	lite, err := h.reader.GetLite(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(lite))
}

func (h *OrderHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, usecase.ErrCacheUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cache_unavailable"})
	case errors.Is(err, usecase.ErrStoreUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}
