package usersrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/clean-parking/pkg/core/model"
)

type rawSignUpReq struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=120"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=user owner"`
}

type signUpReq struct {
	Email, Name, Password string
	Role                  model.UserRole
}

func (rs *resource) DserSignUpReq(c *gin.Context) (*signUpReq, bool) {
	req := &rawSignUpReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil, false
	}
	if req.Role == "" {
		req.Role = string(model.RoleUser)
	}
	role, err := model.ParseUserRole(req.Role)
	if err != nil {
		var errs map[string][]string
		serdser.AddErr(&errs, "role", err.Error())
		c.JSON(http.StatusBadRequest, errs)
		return nil, false
	}
	return &signUpReq{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     role,
	}, true
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (rs *resource) DserLoginReq(c *gin.Context) (*loginReq, bool) {
	req := &loginReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil, false
	}
	return req, true
}
