package sessionsrs

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/serdser"
)

// rawEnterReq has no entry time; check-ins happen at the server time.
type rawEnterReq struct {
	ParkingID string `json:"parking_id" binding:"required,uuid"`
}

type enterReq struct {
	ParkingID uuid.UUID
}

func (rs *resource) DserEnterReq(c *gin.Context) (*enterReq, bool) {
	req := &rawEnterReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil, false
	}
	return &enterReq{ParkingID: uuid.MustParse(req.ParkingID)}, true
}

type exitReq struct {
	SessionID uuid.UUID
}

// DserExitReq ignores the request body, so check-outs happen at the
// server time too.
func (rs *resource) DserExitReq(c *gin.Context) (*exitReq, bool) {
	sid, ok := serdser.UUIDParam(c, "sid")
	if !ok {
		return nil, false
	}
	return &exitReq{SessionID: sid}, true
}
