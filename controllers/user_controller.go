package controllers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SimpleHunt/Appointment-app/lifecycle"
	"github.com/SimpleHunt/Appointment-app/middleware"
	"github.com/SimpleHunt/Appointment-app/models"
	"github.com/SimpleHunt/Appointment-app/repositories"
	"github.com/SimpleHunt/Appointment-app/utils"
)

// UserController handles user management and profiles
type UserController struct {
	DB     *mongo.Client
	users  repositories.UserStore
	logger *log.Logger
}

// NewUserController creates a new user controller
func NewUserController(db *mongo.Client, users repositories.UserStore) *UserController {
	return &UserController{
		DB:     db,
		users:  users,
		logger: log.New(os.Stdout, "[USERS] ", log.LstdFlags),
	}
}

// CreateUser lets an admin provision an account with a role
func (uc *UserController) CreateUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "user_name, password, role and name are required; role must be admin, inside_sales or bdm",
		})
	}

	userName, err := utils.SanitizeUserName(req.UserName)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Username must be 3-32 characters: lowercase letters, digits, dot, dash or underscore",
		})
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		uc.logger.Printf("Failed to hash password: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create user",
		})
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid phone number",
		})
	}

	user := models.User{
		UserName: userName,
		Password: hashed,
		Role:     req.Role,
		Name:     utils.SanitizeInput(req.Name),
		Age:      req.Age,
		Position: utils.SanitizeInput(req.Position),
		Phone:    phone,
		Address:  utils.SanitizeInput(req.Address),
		Location: utils.SanitizeInput(req.Location),
		IsActive: true,
	}

	created, err := uc.users.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, lifecycle.ErrConflict) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Username is already taken",
			})
		}
		return respondLifecycleError(c, err)
	}

	created.Password = ""
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "User created successfully",
		Data:    created,
	})
}

// ListUsers returns all accounts without password hashes
func (uc *UserController) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users, err := uc.users.List(ctx)
	if err != nil {
		return respondLifecycleError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Users retrieved successfully",
		Data:    users,
	})
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (uc *UserController) DeleteUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}
	if userID.Hex() == claims.UserID {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Cannot delete your own account",
		})
	}

	if err := uc.users.Delete(ctx, userID); err != nil {
		return respondLifecycleError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User deleted successfully",
	})
}

// ListBDMs returns the assignable-BDM directory for the report form
func (uc *UserController) ListBDMs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bdms, err := uc.users.ListBDMs(ctx)
	if err != nil {
		return respondLifecycleError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "BDMs retrieved successfully",
		Data:    bdms,
	})
}

// GetProfile returns the calling user's own record
func (uc *UserController) GetProfile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return respondLifecycleError(c, err)
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved successfully",
		Data:    user,
	})
}

// UpdateProfile updates the calling user's own profile fields
func (uc *UserController) UpdateProfile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid phone number",
		})
	}

	req.Name = utils.SanitizeInput(req.Name)
	req.Position = utils.SanitizeInput(req.Position)
	req.Phone = phone
	req.Address = utils.SanitizeInput(req.Address)
	req.Location = utils.SanitizeInput(req.Location)

	updated, err := uc.users.UpdateProfile(ctx, userID, req)
	if err != nil {
		return respondLifecycleError(c, err)
	}

	updated.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile updated successfully",
		Data:    updated,
	})
}

// UploadProfilePicture stores a resized profile image and records its URL
func (uc *UserController) UploadProfilePicture(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	file, err := c.FormFile("picture")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Picture file is required",
		})
	}
	if err := utils.ValidateImageFile(file.Filename, file.Size); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Failed to read picture file",
		})
	}
	fileData, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Failed to read picture file",
		})
	}

	// Keep the previous picture around until the new one is stored
	previous := ""
	if current, err := uc.users.FindByID(ctx, userID); err == nil {
		previous = current.Picture
	}

	pictureURL, err := utils.SaveProfilePicture(fileData, file.Filename)
	if err != nil {
		uc.logger.Printf("Failed to save profile picture: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save picture",
		})
	}

	if err := uc.users.UpdatePicture(ctx, userID, pictureURL); err != nil {
		utils.DeleteUploadedFile(pictureURL)
		return respondLifecycleError(c, err)
	}

	if previous != "" {
		utils.DeleteUploadedFile(previous)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Picture uploaded successfully",
		Data:    map[string]string{"picture": pictureURL},
	})
}
