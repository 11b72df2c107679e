package parkingsrs

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/clean-parking/pkg/core/model"
)

type rawRegisterParkingReq struct {
	Name         string             `json:"name" binding:"required,max=200"`
	Address      string             `json:"address" binding:"max=500"`
	Lat          float64            `json:"lat" binding:"latitude"`
	Lon          float64            `json:"lon" binding:"longitude"`
	HourlyRate   string             `json:"hourly_rate" binding:"required"`
	TotalSpaces  int                `json:"total_spaces" binding:"required,min=1"`
	OpeningHours model.OpeningHours `json:"opening_hours"`
}

func (rs *resource) DserRegisterParkingReq(
	c *gin.Context,
) (*model.Parking, bool) {
	req := &rawRegisterParkingReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil, false
	}
	var errs map[string][]string
	currency := ""
	if im := rs.app.Settings().ImmutableSettings; im != nil {
		currency = im.Currency
	}
	rate, err := model.ParseMoney(req.HourlyRate, currency)
	if serdser.Assert(&errs, err == nil, "hourly_rate", errString(err)) {
		serdser.Assert(
			&errs, !rate.IsZero(), "hourly_rate",
			"The hourly_rate must be positive.",
		)
	}
	coord, err := model.NewCoordinate(req.Lat, req.Lon)
	serdser.Assert(&errs, err == nil, "lat/lon", errString(err))
	if errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return nil, false
	}
	return &model.Parking{
		Name:         req.Name,
		Address:      req.Address,
		Coordinate:   coord,
		HourlyRate:   rate,
		TotalSpaces:  req.TotalSpaces,
		OpeningHours: req.OpeningHours,
	}, true
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

type rawListParkingsReq struct {
	Lat      string  `form:"lat" binding:"omitempty,latitude"`
	Lon      string  `form:"lon" binding:"omitempty,longitude"`
	RadiusKm float64 `form:"radius_km" binding:"omitempty,gt=0"`
}

type listParkingsReq struct {
	Near     *model.Coordinate
	RadiusKm float64
}

func (rs *resource) DserListParkingsReq(
	c *gin.Context,
) (*listParkingsReq, bool) {
	req := &rawListParkingsReq{}
	if ok := serdser.Bind(c, req, binding.Query); !ok {
		return nil, false
	}
	val := &listParkingsReq{RadiusKm: req.RadiusKm}
	if req.Lat == "" && req.Lon == "" {
		return val, true
	}
	var errs map[string][]string
	if serdser.Assert(
		&errs, req.Lat != "" && req.Lon != "", "lat/lon",
		"Both of lat and lon are required for a nearby search.",
	) {
		coord, err := serdser.StrCoordinate{
			Lat: req.Lat, Lon: req.Lon,
		}.ToModel()
		if serdser.Assert(&errs, err == nil, "lat/lon", errString(err)) {
			val.Near = &coord
		}
	}
	if errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return nil, false
	}
	return val, true
}

type rawAvailabilityReq struct {
	At       *time.Time `form:"at" time_format:"2006-01-02T15:04:05Z07:00"`
	Start    *time.Time `form:"start" time_format:"2006-01-02T15:04:05Z07:00"`
	End      *time.Time `form:"end" time_format:"2006-01-02T15:04:05Z07:00"`
	Required int        `form:"required" binding:"omitempty,min=1"`
}

type availabilityReq struct {
	ParkingID  uuid.UUID
	At         *time.Time
	Start, End time.Time
	Required   int
}

func (rs *resource) DserAvailabilityReq(
	c *gin.Context,
) (*availabilityReq, bool) {
	pid, ok := serdser.UUIDParam(c, "pid")
	if !ok {
		return nil, false
	}
	req := &rawAvailabilityReq{}
	if ok := serdser.Bind(c, req, binding.Query); !ok {
		return nil, false
	}
	val := &availabilityReq{ParkingID: pid, At: req.At, Required: 1}
	if req.Required > 0 {
		val.Required = req.Required
	}
	var errs map[string][]string
	if req.At != nil {
		serdser.Assert(
			&errs, req.Start == nil && req.End == nil, "at",
			"The at parameter excludes start and end.",
		)
	} else if serdser.Assert(
		&errs, req.Start != nil && req.End != nil, "start/end",
		"Either at or both of start and end are required.",
	) {
		val.Start, val.End = *req.Start, *req.End
		serdser.Assert(
			&errs, val.Start.Before(val.End), "start/end",
			"The start must be before the end.",
		)
	}
	if errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return nil, false
	}
	return val, true
}

// AvailabilityResp reports either the number of free spaces at an
// instant or whether the required spaces are free during a window.
type AvailabilityResp struct {
	ParkingID       uuid.UUID `json:"parking_id"`
	AvailableSpaces *int      `json:"available_spaces,omitempty"`
	Available       *bool     `json:"available,omitempty"`
}
