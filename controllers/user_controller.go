package controllers

import (
	"net/http"

	"backend/errs"
	"backend/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Users *services.UserService
}

// constructor
func NewUserController(us *services.UserService) *UserController {
	return &UserController{Users: us}
}

type createUserInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	Phone         string `json:"phone"`
	RoomID        string `json:"roomId"`
	ExpoPushToken string `json:"expoPushToken"`
}

func (uc *UserController) Create(c *gin.Context) {
	var in createUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, errs.Validation("invalid request body"))
		return
	}

	user, err := uc.Users.CreateUser(services.CreateUserInput{
		Name:      in.Name,
		Email:     in.Email,
		Password:  in.Password,
		Role:      in.Role,
		Phone:     in.Phone,
		RoomID:    in.RoomID,
		PushToken: in.ExpoPushToken,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (uc *UserController) Login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, errs.Validation("invalid request body"))
		return
	}

	user, err := uc.Users.Login(in.Email, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "err": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

func (uc *UserController) List(c *gin.Context) {
	users, err := uc.Users.ListUsers(c.Query("role"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "users": users})
}

type savePushTokenInput struct {
	Email         string `json:"email"`
	RoomID        string `json:"roomId"`
	ExpoPushToken string `json:"expoPushToken"`
}

func (uc *UserController) SavePushToken(c *gin.Context) {
	var in savePushTokenInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, errs.Validation("invalid request body"))
		return
	}

	user, err := uc.Users.SavePushToken(in.Email, in.RoomID, in.ExpoPushToken)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

func (uc *UserController) Delete(c *gin.Context) {
	id := c.Param("id")
	deleteVisits := c.Query("deleteVisits") == "true" || c.Query("deleteVisits") == "1"

	visitsDeleted, err := uc.Users.DeleteUser(id, deleteVisits)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"msg":           "user deleted",
		"deletedUserId": id,
		"visitsDeleted": visitsDeleted,
	})
}
