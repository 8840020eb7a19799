package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shawarma-sheesh-api/models"

	"github.com/gin-gonic/gin"
)

type SlideInput struct {
	Image     string `json:"image" binding:"required"`
	TitleEn   string `json:"title_en"`
	TitleAr   string `json:"title_ar"`
	Link      string `json:"link"`
	SortOrder int    `json:"sort_order"`
	Active    *bool  `json:"active"`
}

type JobInput struct {
	TitleEn       string `json:"title_en" binding:"required"`
	TitleAr       string `json:"title_ar" binding:"required"`
	DescriptionEn string `json:"description_en"`
	DescriptionAr string `json:"description_ar"`
	Active        *bool  `json:"active"`
}

type JobApplicationInput struct {
	Name      string `json:"name" binding:"required,max=100"`
	Phone     string `json:"phone" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	Message   string `json:"message" binding:"max=2000"`
	ResumeURL string `json:"resume_url" binding:"omitempty,url"`
}

type ShippingLocationInput struct {
	NameEn       string  `json:"name_en" binding:"required"`
	NameAr       string  `json:"name_ar" binding:"required"`
	DeliveryCost float64 `json:"delivery_cost" binding:"min=0"`
	Active       *bool   `json:"active"`
}

func activeOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// ListSlides returns active homepage slides in display order
func (h *Handler) ListSlides(c *gin.Context) {
	var slides []models.Slide
	if err := h.db(c).Where("active = ?", true).Order("sort_order, id").Find(&slides).Error; err != nil {
		h.internalError(c, err, "list slides")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(slides), "slides": slides})
}

func (h *Handler) AdminListSlides(c *gin.Context) {
	var slides []models.Slide
	if err := h.db(c).Order("sort_order, id").Find(&slides).Error; err != nil {
		h.internalError(c, err, "list slides")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(slides), "slides": slides})
}

func (h *Handler) CreateSlide(c *gin.Context) {
	var in SlideInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slide := models.Slide{
		Image:     in.Image,
		TitleEn:   in.TitleEn,
		TitleAr:   in.TitleAr,
		Link:      in.Link,
		SortOrder: in.SortOrder,
		Active:    activeOr(in.Active, true),
	}
	if err := h.db(c).Create(&slide).Error; err != nil {
		h.internalError(c, err, "create slide")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Slide created", "slide": slide})
}

func (h *Handler) UpdateSlide(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in SlideInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var slide models.Slide
	if err := h.db(c).First(&slide, id).Error; err != nil {
		h.notFoundOr(c, err, "Slide")
		return
	}
	slide.Image = in.Image
	slide.TitleEn = in.TitleEn
	slide.TitleAr = in.TitleAr
	slide.Link = in.Link
	slide.SortOrder = in.SortOrder
	slide.Active = activeOr(in.Active, slide.Active)
	if err := h.db(c).Save(&slide).Error; err != nil {
		h.internalError(c, err, "update slide")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slide updated", "slide": slide})
}

func (h *Handler) DeleteSlide(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := h.db(c).Delete(&models.Slide{}, id)
	if res.Error != nil {
		h.internalError(c, res.Error, "delete slide")
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Slide not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slide deleted", "slide_id": id})
}

// ListJobs returns open positions
func (h *Handler) ListJobs(c *gin.Context) {
	var jobs []models.Job
	if err := h.db(c).Where("active = ?", true).Order("created_at desc").Find(&jobs).Error; err != nil {
		h.internalError(c, err, "list jobs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(jobs), "jobs": jobs})
}

func (h *Handler) AdminListJobs(c *gin.Context) {
	var jobs []models.Job
	if err := h.db(c).Order("created_at desc").Find(&jobs).Error; err != nil {
		h.internalError(c, err, "list jobs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(jobs), "jobs": jobs})
}

func (h *Handler) CreateJob(c *gin.Context) {
	var in JobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job := models.Job{
		TitleEn:       in.TitleEn,
		TitleAr:       in.TitleAr,
		DescriptionEn: in.DescriptionEn,
		DescriptionAr: in.DescriptionAr,
		Active:        activeOr(in.Active, true),
	}
	if err := h.db(c).Create(&job).Error; err != nil {
		h.internalError(c, err, "create job")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Job created", "job": job})
}

func (h *Handler) UpdateJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in JobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var job models.Job
	if err := h.db(c).First(&job, id).Error; err != nil {
		h.notFoundOr(c, err, "Job")
		return
	}
	job.TitleEn = in.TitleEn
	job.TitleAr = in.TitleAr
	job.DescriptionEn = in.DescriptionEn
	job.DescriptionAr = in.DescriptionAr
	job.Active = activeOr(in.Active, job.Active)
	if err := h.db(c).Save(&job).Error; err != nil {
		h.internalError(c, err, "update job")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job updated", "job": job})
}

// DeleteJob removes the posting together with its applications.
func (h *Handler) DeleteJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.db(c).Where("job_id = ?", id).Delete(&models.JobApplication{}).Error; err != nil {
		h.internalError(c, err, "delete job applications")
		return
	}
	res := h.db(c).Delete(&models.Job{}, id)
	if res.Error != nil {
		h.internalError(c, res.Error, "delete job")
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted", "job_id": id})
}

// ApplyForJob stores an application and emails HR about it
func (h *Handler) ApplyForJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in JobApplicationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var job models.Job
	if err := h.db(c).Where("active = ?", true).First(&job, id).Error; err != nil {
		h.notFoundOr(c, err, "Job")
		return
	}

	app := models.JobApplication{
		JobID:     job.ID,
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Email:     in.Email,
		Message:   in.Message,
		ResumeURL: in.ResumeURL,
	}
	if err := h.db(c).Create(&app).Error; err != nil {
		h.internalError(c, err, "create job application")
		return
	}

	h.notifyHR(job, app)
	c.JSON(http.StatusCreated, gin.H{"message": "Application submitted", "application": app})
}

// notifyHR mails the application in the background; failures are only logged.
func (h *Handler) notifyHR(job models.Job, app models.JobApplication) {
	if h.Mailer == nil || h.Settings.HREmail == "" {
		return
	}
	subject := fmt.Sprintf("New application: %s", job.TitleEn)
	body := fmt.Sprintf("Position: %s\nName: %s\nPhone: %s\nEmail: %s\nResume: %s\n\n%s\n",
		job.TitleEn, app.Name, app.Phone, app.Email, app.ResumeURL, app.Message)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.Mailer.Send(ctx, h.Settings.HREmail, subject, body); err != nil {
			h.Log.Error("email job application", "application_id", app.ID, "error", err)
		}
	}()
}

func (h *Handler) ListJobApplications(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var job models.Job
	if err := h.db(c).First(&job, id).Error; err != nil {
		h.notFoundOr(c, err, "Job")
		return
	}
	var apps []models.JobApplication
	if err := h.db(c).Where("job_id = ?", id).Order("created_at desc").Find(&apps).Error; err != nil {
		h.internalError(c, err, "list job applications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job, "count": len(apps), "applications": apps})
}

// ListShippingLocations returns the zones customers can pick for delivery
func (h *Handler) ListShippingLocations(c *gin.Context) {
	var locations []models.ShippingLocation
	if err := h.db(c).Where("active = ?", true).Order("name_en").Find(&locations).Error; err != nil {
		h.internalError(c, err, "list shipping locations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(locations), "locations": locations})
}

func (h *Handler) CreateShippingLocation(c *gin.Context) {
	var in ShippingLocationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	loc := models.ShippingLocation{
		NameEn:       in.NameEn,
		NameAr:       in.NameAr,
		DeliveryCost: in.DeliveryCost,
		Active:       activeOr(in.Active, true),
	}
	if err := h.db(c).Create(&loc).Error; err != nil {
		h.internalError(c, err, "create shipping location")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Shipping location created", "location": loc})
}

func (h *Handler) UpdateShippingLocation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in ShippingLocationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var loc models.ShippingLocation
	if err := h.db(c).First(&loc, id).Error; err != nil {
		h.notFoundOr(c, err, "Shipping location")
		return
	}
	loc.NameEn = in.NameEn
	loc.NameAr = in.NameAr
	loc.DeliveryCost = in.DeliveryCost
	loc.Active = activeOr(in.Active, loc.Active)
	if err := h.db(c).Save(&loc).Error; err != nil {
		h.internalError(c, err, "update shipping location")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shipping location updated", "location": loc})
}

// DeleteShippingLocation deactivates a zone that addresses still use and
// deletes it otherwise.
func (h *Handler) DeleteShippingLocation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var loc models.ShippingLocation
	if err := h.db(c).First(&loc, id).Error; err != nil {
		h.notFoundOr(c, err, "Shipping location")
		return
	}

	var inUse int64
	if err := h.db(c).Model(&models.Address{}).Where("location_id = ?", id).Count(&inUse).Error; err != nil {
		h.internalError(c, err, "count addresses")
		return
	}
	if inUse > 0 {
		if err := h.db(c).Model(&loc).Update("active", false).Error; err != nil {
			h.internalError(c, err, "deactivate shipping location")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Shipping location is in use and was deactivated", "location_id": id})
		return
	}

	if err := h.db(c).Delete(&loc).Error; err != nil {
		h.internalError(c, err, "delete shipping location")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shipping location deleted", "location_id": id})
}
