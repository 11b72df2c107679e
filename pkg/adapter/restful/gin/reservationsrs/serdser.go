package reservationsrs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/serdser"
)

type rawCreateReservationReq struct {
	ParkingID string    `json:"parking_id" binding:"required,uuid"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type createReservationReq struct {
	ParkingID          uuid.UUID
	StartTime, EndTime time.Time
}

// DserCreateReservationReq only checks the request format. The time
// window is validated by the reservations use case.
func (rs *resource) DserCreateReservationReq(
	c *gin.Context,
) (*createReservationReq, bool) {
	req := &rawCreateReservationReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil, false
	}
	return &createReservationReq{
		ParkingID: uuid.MustParse(req.ParkingID),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}, true
}
