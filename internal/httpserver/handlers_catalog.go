package httpserver

import (
	"net/http"
	"strconv"

	"garud-store/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

func (h *handlers) home(c *gin.Context) {
	page, err := h.deps.Catalog.Home(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handlers) listProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	res, err := h.deps.Catalog.List(c.Request.Context(), catalog.ListInput{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Page:     page,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) productDetail(c *gin.Context) {
	res, err := h.deps.Catalog.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) adminProducts(c *gin.Context) {
	products, err := h.deps.Catalog.AdminList(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *handlers) adminGetProduct(c *gin.Context) {
	p, err := h.deps.Catalog.AdminGet(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

func (h *handlers) adminCreateProduct(c *gin.Context) {
	var in catalog.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, failureMsg("invalid_request", "malformed body"))
		return
	}
	p, err := h.deps.Catalog.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "product": p})
}

func (h *handlers) adminUpdateProduct(c *gin.Context) {
	var in catalog.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, failureMsg("invalid_request", "malformed body"))
		return
	}
	p, err := h.deps.Catalog.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": p})
}

func (h *handlers) adminDeleteProduct(c *gin.Context) {
	if err := h.deps.Catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) adminToggleProduct(c *gin.Context) {
	p, err := h.deps.Catalog.ToggleActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "isActive": p.IsActive})
}
