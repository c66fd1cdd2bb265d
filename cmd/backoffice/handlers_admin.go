package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Hendrasetiawanolybunga/tplogistik/internal/auth"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/buyer"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/catalog"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/complaint"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/courier"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/region"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/vendor"
)

// ---------- districts ----------

func createDistrictHandler(repo region.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req region.CreateDistrictRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		d := &region.District{ID: uuid.NewString(), Name: req.Name}
		if err := repo.CreateDistrict(c.Request.Context(), d); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, d)
	}
}

func listDistrictsHandler(repo region.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, limit, offset := pageParams(c)
		items, err := repo.ListDistricts(c.Request.Context(), region.Query{Q: q, Limit: limit, Offset: offset})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
	}
}

func updateDistrictHandler(repo region.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req region.CreateDistrictRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		d := &region.District{ID: c.Param("id"), Name: req.Name}
		if err := repo.UpdateDistrict(c.Request.Context(), d); err != nil {
			if errors.Is(err, region.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

func deleteDistrictHandler(repo region.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.DeleteDistrict(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ---------- subdistricts ----------

func createSubdistrictHandler(repo region.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req region.CreateSubdistrictRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.DistrictID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and district_id are required"})
			return
		}
		s := &region.Subdistrict{
			ID:         uuid.NewString(),
			Name:       req.Name,
			PostalCode: req.PostalCode,
			DistrictID: req.DistrictID,
		}
		if err := repo.CreateSubdistrict(c.Request.Context(), s); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, s)
	}
}

func listSubdistrictsHandler(repo region.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, limit, offset := pageParams(c)
		items, err := repo.ListSubdistricts(c.Request.Context(), region.Query{Q: q, Limit: limit, Offset: offset})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
	}
}

func updateSubdistrictHandler(repo region.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req region.CreateSubdistrictRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		s := &region.Subdistrict{
			ID:         c.Param("id"),
			Name:       req.Name,
			PostalCode: req.PostalCode,
			DistrictID: req.DistrictID,
		}
		if err := repo.UpdateSubdistrict(c.Request.Context(), s); err != nil {
			if errors.Is(err, region.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func deleteSubdistrictHandler(repo region.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.DeleteSubdistrict(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ---------- buyers (admin view; registration is public) ----------

func listBuyersHandler(repo buyer.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, limit, offset := pageParams(c)
		items, err := repo.List(c.Request.Context(), buyer.Query{Q: q, Limit: limit, Offset: offset})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
	}
}

func getBuyerHandler(repo buyer.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

func deleteBuyerHandler(repo buyer.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ---------- vendors ----------

func createVendorHandler(repo vendor.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req vendor.CreateVendorRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		v := &vendor.Vendor{
			ID:      uuid.NewString(),
			Name:    req.Name,
			Email:   req.Email,
			Address: req.Address,
			Phone:   req.Phone,
		}
		if err := repo.Create(c.Request.Context(), v); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, v)
	}
}

func listVendorsHandler(repo vendor.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, limit, offset := pageParams(c)
		items, err := repo.List(c.Request.Context(), vendor.Query{Q: q, Limit: limit, Offset: offset})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
	}
}

func getVendorHandler(repo vendor.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

func updateVendorHandler(repo vendor.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req vendor.CreateVendorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		v := &vendor.Vendor{
			ID:      c.Param("id"),
			Name:    req.Name,
			Email:   req.Email,
			Address: req.Address,
			Phone:   req.Phone,
		}
		if err := repo.Update(c.Request.Context(), v); err != nil {
			if errors.Is(err, vendor.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

func deleteVendorHandler(repo vendor.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ---------- categories & products ----------

func createCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		cat := &catalog.Category{ID: uuid.NewString(), Name: req.Name}
		if err := repo.CreateCategory(c.Request.Context(), cat); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

func listCategoriesHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, limit, offset := pageParams(c)
		items, err := repo.ListCategories(c.Request.Context(), catalog.Query{Q: q, Limit: limit, Offset: offset})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
	}
}

func updateCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		cat := &catalog.Category{ID: c.Param("id"), Name: req.Name}
		if err := repo.UpdateCategory(c.Request.Context(), cat); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

func deleteCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.DeleteCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func createProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.CategoryID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and category_id are required"})
			return
		}
		price, err := catalog.NormalizePrice(req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
			return
		}
		p := &catalog.Product{
			ID:         uuid.NewString(),
			Name:       req.Name,
			Price:      price,
			CategoryID: req.CategoryID,
		}
		if err := repo.CreateProduct(c.Request.Context(), p); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func listProductsHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, limit, offset := pageParams(c)
		items, err := repo.ListProducts(c.Request.Context(), catalog.Query{Q: q, Limit: limit, Offset: offset})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
	}
}

func getProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func updateProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		updatePrice := req.Price != ""
		price := ""
		if updatePrice {
			var err error
			price, err = catalog.NormalizePrice(req.Price)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
				return
			}
		}
		p := &catalog.Product{
			ID:         c.Param("id"),
			Name:       req.Name,
			Price:      price,
			CategoryID: req.CategoryID,
		}
		if err := repo.UpdateProduct(c.Request.Context(), p, updatePrice); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out, err := repo.GetProduct(c.Request.Context(), p.ID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func deleteProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.DeleteProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ---------- couriers ----------

func createCourierHandler(repo courier.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req courier.CreateCourierRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Email == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and password are required"})
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "hash error"})
			return
		}
		k := &courier.Courier{
			ID:           uuid.NewString(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			Phone:        req.Phone,
			Active:       true,
		}
		if err := repo.Create(c.Request.Context(), k); err != nil {
			if errors.Is(err, courier.ErrAlreadyExist) {
				c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, k)
	}
}

func listCouriersHandler(repo courier.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, limit, offset := pageParams(c)
		items, err := repo.List(c.Request.Context(), courier.Query{Q: q, Limit: limit, Offset: offset})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
	}
}

func updateCourierHandler(repo courier.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req courier.CreateCourierRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		updatePassword := req.Password != ""
		hash := ""
		if updatePassword {
			var err error
			hash, err = auth.HashPassword(req.Password)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "hash error"})
				return
			}
		}
		k := &courier.Courier{
			ID:           c.Param("id"),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			Phone:        req.Phone,
		}
		if err := repo.Update(c.Request.Context(), k, updatePassword); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out, err := repo.GetByID(c.Request.Context(), k.ID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func setCourierActiveHandler(repo courier.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Active *bool `json:"active"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "active is required"})
			return
		}
		if err := repo.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
			if errors.Is(err, courier.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func deleteCourierHandler(repo courier.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ---------- complaints ----------

func createComplaintHandler(repo complaint.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		if actor.Role != auth.RoleBuyer {
			c.JSON(http.StatusForbidden, gin.H{"error": "only buyers file complaints"})
			return
		}
		var req complaint.CreateComplaintRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Body == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "body is required"})
			return
		}
		k := &complaint.Complaint{
			ID:        uuid.NewString(),
			BuyerID:   actor.ID,
			InvoiceID: req.InvoiceID,
			Body:      req.Body,
			PhotoURL:  req.PhotoURL,
		}
		if err := repo.Create(c.Request.Context(), k); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, k)
	}
}

func listComplaintsHandler(repo complaint.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		_, limit, offset := pageParams(c)
		q := complaint.Query{BuyerID: c.Query("buyer_id"), Limit: limit, Offset: offset}
		switch actor.Role {
		case auth.RoleAdmin, auth.RoleLeader:
		case auth.RoleBuyer:
			q.BuyerID = actor.ID
		default:
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
	}
}

func deleteComplaintHandler(repo complaint.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
