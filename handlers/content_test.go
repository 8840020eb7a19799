package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"shawarma-sheesh-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobApplication_MailsHR(t *testing.T) {
	app := newTestApp(t)
	_, cook := app.user(t, models.RoleEmployee, "cook")

	w := app.do(t, http.MethodPost, "/api/admin/jobs", cook, obj{"title_en": "Cashier", "title_ar": "كاشير"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	job := decode[struct {
		Job models.Job `json:"job"`
	}](t, w).Job
	assert.True(t, job.Active)

	apply := fmt.Sprintf("/api/jobs/%d/apply", job.ID)
	w = app.do(t, http.MethodPost, apply, "", obj{"name": "Huda", "phone": "0791112223", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPost, apply, "", obj{
		"name":    "Huda",
		"phone":   "0791112223",
		"email":   "huda@example.com",
		"message": "Two years at a bakery",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	select {
	case mail := <-app.mailer.sent:
		assert.Equal(t, "hr@shawarmasheesh.com", mail.To)
		assert.Equal(t, "New application: Cashier", mail.Subject)
		assert.Contains(t, mail.Body, "Huda")
		assert.Contains(t, mail.Body, "Two years at a bakery")
	case <-time.After(2 * time.Second):
		t.Fatal("no mail sent to HR")
	}

	w = app.do(t, http.MethodGet, fmt.Sprintf("/api/admin/jobs/%d/applications", job.ID), cook, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[struct {
		Count int `json:"count"`
	}](t, w).Count)

	// closed postings take no applications
	w = app.do(t, http.MethodPut, fmt.Sprintf("/api/admin/jobs/%d", job.ID), cook, obj{"title_en": "Cashier", "title_ar": "كاشير", "active": false})
	require.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodPost, apply, "", obj{"name": "Ali", "phone": "0791112224"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodGet, "/api/jobs", "", nil)
	assert.Zero(t, decode[struct {
		Count int `json:"count"`
	}](t, w).Count)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/jobs/%d", job.ID), cook, nil).Code)
	var left int64
	require.NoError(t, app.db.Model(&models.JobApplication{}).Count(&left).Error)
	assert.Zero(t, left)
}

func TestSlides(t *testing.T) {
	app := newTestApp(t)
	_, cook := app.user(t, models.RoleEmployee, "cook")

	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/admin/slides", cook, obj{"image": "/img/b.jpg", "sort_order": 2}).Code)
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/admin/slides", cook, obj{"image": "/img/a.jpg", "sort_order": 1}).Code)
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/admin/slides", cook, obj{"image": "/img/hidden.jpg", "active": false}).Code)

	type slidesResponse struct {
		Slides []models.Slide `json:"slides"`
	}
	public := decode[slidesResponse](t, app.do(t, http.MethodGet, "/api/slides", "", nil)).Slides
	require.Len(t, public, 2)
	assert.Equal(t, "/img/a.jpg", public[0].Image)

	all := decode[slidesResponse](t, app.do(t, http.MethodGet, "/api/admin/slides", cook, nil)).Slides
	assert.Len(t, all, 3)

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/slides/%d", all[0].ID), cook, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/slides/%d", all[0].ID), cook, nil).Code)
}

func TestShippingLocationsAndAddresses(t *testing.T) {
	app := newTestApp(t)
	cat := app.seed(t)
	_, cook := app.user(t, models.RoleEmployee, "cook")
	_, customer := app.user(t, models.RoleUser, "0790000000")

	w := app.do(t, http.MethodPost, "/api/admin/shipping-locations", cook, obj{"name_en": "Sweifieh", "name_ar": "الصويفية", "delivery_cost": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sweifieh := decode[struct {
		Location models.ShippingLocation `json:"location"`
	}](t, w).Location

	type locationsResponse struct {
		Locations []models.ShippingLocation `json:"locations"`
	}
	assert.Len(t, decode[locationsResponse](t, app.do(t, http.MethodGet, "/api/shipping-locations", "", nil)).Locations, 2)

	w = app.do(t, http.MethodPost, "/api/addresses", customer, obj{"location_id": cat.location.ID, "street": "Zahran St", "building": "7"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	address := decode[struct {
		Address models.Address `json:"address"`
	}](t, w).Address
	require.NotNil(t, address.Location)
	assert.Equal(t, "Abdoun", address.Location.NameEn)

	// unused zones are deleted, zones with addresses are only switched off
	require.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/shipping-locations/%d", sweifieh.ID), cook, nil).Code)
	require.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/shipping-locations/%d", cat.location.ID), cook, nil).Code)

	var remaining []models.ShippingLocation
	require.NoError(t, app.db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.False(t, remaining[0].Active)
	assert.Empty(t, decode[locationsResponse](t, app.do(t, http.MethodGet, "/api/shipping-locations", "", nil)).Locations)

	w = app.do(t, http.MethodPost, "/api/addresses", customer, obj{"location_id": cat.location.ID, "street": "Zahran St"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodGet, "/api/addresses", customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[struct {
		Count int `json:"count"`
	}](t, w).Count)

	path := fmt.Sprintf("/api/addresses/%d", address.ID)
	_, other := app.user(t, models.RoleUser, "0790000001")
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodDelete, path, other, nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, path, customer, nil).Code)
}

func TestPublicInfo(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/order-states", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[struct {
		StateMachine   []map[string]string  `json:"state_machine"`
		TerminalStates []models.OrderStatus `json:"terminal_states"`
	}](t, w)
	assert.NotEmpty(t, info.StateMachine)
	assert.ElementsMatch(t, []models.OrderStatus{models.StatusDelivered, models.StatusCancelled}, info.TerminalStates)
}
