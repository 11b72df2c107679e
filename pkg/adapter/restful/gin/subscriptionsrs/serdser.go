package subscriptionsrs

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/clean-parking/pkg/core/model"
)

type rawCreateSubscriptionReq struct {
	ParkingID      string            `json:"parking_id" binding:"required,uuid"`
	WeeklySlots    model.WeeklySlots `json:"weekly_slots" binding:"required"`
	StartDate      string            `json:"start_date" binding:"required,datetime=2006-01-02"`
	DurationMonths int               `json:"duration_months" binding:"required,min=1"`
}

type createSubscriptionReq struct {
	ParkingID      uuid.UUID
	WeeklySlots    model.WeeklySlots
	StartDate      time.Time
	DurationMonths int
}

func (rs *resource) DserCreateSubscriptionReq(
	c *gin.Context,
) (*createSubscriptionReq, bool) {
	req := &rawCreateSubscriptionReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil, false
	}
	start, _ := time.Parse(time.DateOnly, req.StartDate)
	return &createSubscriptionReq{
		ParkingID:      uuid.MustParse(req.ParkingID),
		WeeklySlots:    req.WeeklySlots,
		StartDate:      start,
		DurationMonths: req.DurationMonths,
	}, true
}

type rawAvailabilityReq struct {
	ParkingID   string            `json:"parking_id" binding:"required,uuid"`
	WeeklySlots model.WeeklySlots `json:"weekly_slots" binding:"required"`
	StartDate   string            `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string            `json:"end_date" binding:"required,datetime=2006-01-02"`
}

type availabilityReq struct {
	ParkingID          uuid.UUID
	WeeklySlots        model.WeeklySlots
	StartDate, EndDate time.Time
}

func (rs *resource) DserAvailabilityReq(
	c *gin.Context,
) (*availabilityReq, bool) {
	req := &rawAvailabilityReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil, false
	}
	val := &availabilityReq{
		ParkingID:   uuid.MustParse(req.ParkingID),
		WeeklySlots: req.WeeklySlots,
	}
	val.StartDate, _ = time.Parse(time.DateOnly, req.StartDate)
	val.EndDate, _ = time.Parse(time.DateOnly, req.EndDate)
	if val.EndDate.Before(val.StartDate) {
		var errs map[string][]string
		serdser.AddErr(
			&errs, "end_date", "The end_date must not precede start_date.",
		)
		c.JSON(http.StatusBadRequest, errs)
		return nil, false
	}
	return val, true
}
