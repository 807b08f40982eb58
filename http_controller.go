package auth

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

var _ LoginPayload = LoginRequest{}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules. The password is left to the token
// issuer so that a missing password gets the invalid credentials error.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			validation.Length(1, 255),
		),
		validation.Field(
			&r.Password,
			validation.Length(0, 1024),
		),
	)
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

type AuthControllerRoutes struct {
	Login string
	Me    string
	Token string
}

type AuthController struct {
	Logger       Logger
	Auther       *Auther
	Registry     *Registry
	Config       Config
	Routes       *AuthControllerRoutes
	ErrorHandler fiber.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerLogger sets the controller logger
func WithControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

// WithControllerRoutes overrides route paths
func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if routes != nil {
			c.Routes = routes
		}
		return c
	}
}

// NewAuthController builds the controller. auther, registry and cfg are
// required.
func NewAuthController(auther *Auther, registry *Registry, cfg Config, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:   defLogger(),
		Auther:   auther,
		Registry: registry,
		Config:   cfg,
		Routes: &AuthControllerRoutes{
			Login: "/login",
			Me:    "/me",
			Token: "/token",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Auther in auth controller...")
	}

	if c.Registry == nil {
		panic("Missing Registry in auth controller...")
	}

	if c.Config == nil {
		panic("Missing Config in auth controller...")
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = NewErrorHandler(c.Logger)
	}

	return c
}

// RegisterAuthRoutes mounts login, current user and token introspection
// routes on app.
func RegisterAuthRoutes(app fiber.Router, controller *AuthController) {
	app.Post(controller.Routes.Login, controller.LoginPost).
		Name("sign-in.post")

	app.Get(controller.Routes.Me,
		controller.Registry.Authenticate(StrategyName, WithErrorHandler(controller.ErrorHandler)),
		controller.MeGet,
	).Name("me.get")

	app.Get(controller.Routes.Token,
		ClaimsMiddleware(controller.Config, controller.Auther.validator, controller.ErrorHandler),
		controller.TokenGet,
	).Name("token.get")
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.ErrorHandler(c, errors.Wrap(err, errors.CategoryBadInput, "unable to parse login payload").
			WithCode(http.StatusBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(c, errors.FromOzzoValidation(err, "invalid login payload").
			WithCode(http.StatusUnprocessableEntity))
	}

	token, err := a.Auther.Login(c.UserContext(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(a.Auther.TokenService().TTL().Seconds()),
	})
}

func (a *AuthController) MeGet(c *fiber.Ctx) error {
	user, ok := UserFromFiber(c, a.Registry.ContextKey())
	if !ok {
		return a.ErrorHandler(c, ErrUnauthenticated.Clone())
	}
	return c.JSON(user)
}

func (a *AuthController) TokenGet(c *fiber.Ctx) error {
	claims, ok := ClaimsFromFiber(c)
	if !ok {
		return a.ErrorHandler(c, ErrUnauthenticated.Clone())
	}
	return c.JSON(fiber.Map{
		"id":         claims.UserID(),
		"issued_at":  claims.IssuedAt(),
		"expires_at": claims.Expires(),
	})
}
