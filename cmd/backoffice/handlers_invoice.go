package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Hendrasetiawanolybunga/tplogistik/internal/invoice"
)

func createInvoiceHandler(svc *invoice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		var req invoice.CreateInvoiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		inv, err := svc.Create(c.Request.Context(), actor, req)
		if err != nil {
			writeInvoiceErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, inv)
	}
}

func listInvoicesHandler(svc *invoice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		limit, _ := strconv.Atoi(c.Query("limit"))
		offset, _ := strconv.Atoi(c.Query("offset"))
		q := invoice.ListQuery{
			Status:    invoice.Status(c.Query("status")),
			CourierID: c.Query("courier_id"),
			BuyerID:   c.Query("buyer_id"),
			Limit:     limit,
			Offset:    offset,
		}
		items, err := svc.List(c.Request.Context(), actor, q)
		if err != nil {
			writeInvoiceErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
	}
}

func getInvoiceHandler(svc *invoice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		inv, items, err := svc.Get(c.Request.Context(), actor, c.Param("id"))
		if err != nil {
			writeInvoiceErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"invoice": inv, "items": items})
	}
}

func updateInvoiceHeaderHandler(svc *invoice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		var req invoice.UpdateHeaderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		inv, err := svc.UpdateHeader(c.Request.Context(), actor, c.Param("id"), req)
		if err != nil {
			writeInvoiceErr(c, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

func deleteInvoiceHandler(svc *invoice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
			writeInvoiceErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func addLineItemHandler(svc *invoice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		var req invoice.AddLineItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		inv, err := svc.AddLineItem(c.Request.Context(), actor, c.Param("id"), req.ProductID, req.Quantity)
		if err != nil {
			writeInvoiceErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, inv)
	}
}

func updateLineItemHandler(svc *invoice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		var req invoice.UpdateLineItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		inv, err := svc.UpdateLineItem(c.Request.Context(), actor, c.Param("item_id"), req.Quantity)
		if err != nil {
			writeInvoiceErr(c, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

func removeLineItemHandler(svc *invoice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		inv, err := svc.RemoveLineItem(c.Request.Context(), actor, c.Param("item_id"))
		if err != nil {
			writeInvoiceErr(c, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

func recalculateInvoiceHandler(svc *invoice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		inv, err := svc.Recalculate(c.Request.Context(), actor, c.Param("id"))
		if err != nil {
			writeInvoiceErr(c, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

func updateInvoiceStatusHandler(svc *invoice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		var req invoice.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		inv, err := svc.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req)
		if err != nil {
			writeInvoiceErr(c, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}
