package gateway

import (
	"io"
	"net/http"
	"strings"

	"github.com/example/clickmenu/pkg/models"
	"github.com/gin-gonic/gin"
)

const maxOrderBody = 64 << 10

func (g *Gateway) getPublicStore(c *gin.Context) {
	store, err := g.services.Stores.PublicStore(c.Request.Context(), c.Param("storeId"))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"store": store})
}

func (g *Gateway) getStoreMenu(c *gin.Context) {
	menu, err := g.services.Menu.StoreMenu(c.Request.Context(), c.Param("storeId"), c.Query("all") == "1")
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"store": menu.Store, "items": menu.Items})
}

func (g *Gateway) getCombinedMenu(c *gin.Context) {
	ids := strings.Split(c.Query("storeIds"), ",")
	menus, err := g.services.Menu.CombinedMenu(c.Request.Context(), ids)
	if err != nil {
		g.fail(c, err)
		return
	}
	stores := make([]*models.Store, 0, len(menus))
	items := []models.MenuItem{}
	for _, m := range menus {
		stores = append(stores, m.Store)
		items = append(items, m.Items...)
	}
	respond(c, http.StatusOK, gin.H{"stores": stores, "items": items})
}

func (g *Gateway) createOrder(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxOrderBody))
	if err != nil {
		g.fail(c, badRequest("body", "could not be read"))
		return
	}
	in, err := decodeOrder(body)
	if err != nil {
		g.fail(c, err)
		return
	}

	receipt, err := g.services.Orders.CreateOrder(c.Request.Context(), c.Param("storeId"), in)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{
		"request":      receipt.Order,
		"request_id":   receipt.Order.RequestID,
		"summary":      receipt.Summary,
		"message":      receipt.Message,
		"whatsapp_url": receipt.WhatsAppURL,
	})
}
