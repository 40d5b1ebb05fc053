package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/devilmonastery/biniq/internal/pkg/urlutil"
)

// ErrMissingID is returned when a templated endpoint is built without all of its identifiers
var ErrMissingID = errors.New("missing identifier")

// Kind tells static endpoints from templated ones
type Kind int

const (
	// Static endpoints have a fixed path
	Static Kind = iota
	// Templated endpoints have ":name" segments filled in with identifiers
	Templated
)

func (k Kind) String() string {
	if k == Templated {
		return "templated"
	}
	return "static"
}

// Endpoint is one entry of the BinIQ endpoint catalog
type Endpoint struct {
	Kind   Kind
	Method string
	Path   string
}

func static(method, path string) Endpoint {
	return Endpoint{Kind: Static, Method: method, Path: path}
}

func templated(method, path string) Endpoint {
	return Endpoint{Kind: Templated, Method: method, Path: path}
}

// Params returns the names of the ":name" segments, in order
func (e Endpoint) Params() []string {
	var params []string
	for _, seg := range strings.Split(e.Path, "/") {
		if strings.HasPrefix(seg, ":") {
			params = append(params, seg[1:])
		}
	}
	return params
}

// Build returns the fully-qualified URL of the endpoint under baseURL.
// Identifiers are path-escaped and fill the ":name" segments in order.
func (e Endpoint) Build(baseURL string, ids ...string) (string, error) {
	if e.Kind == Static {
		if len(ids) > 0 {
			return "", fmt.Errorf("%s %s takes no identifiers, got %d", e.Method, e.Path, len(ids))
		}
		return urlutil.JoinPath(baseURL, e.Path), nil
	}

	segments := strings.Split(e.Path, "/")
	next := 0
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		if next >= len(ids) || ids[next] == "" {
			return "", fmt.Errorf("%s %s: %w %q", e.Method, e.Path, ErrMissingID, seg[1:])
		}
		segments[i] = url.PathEscape(ids[next])
		next++
	}
	if next != len(ids) {
		return "", fmt.Errorf("%s %s takes %d identifiers, got %d", e.Method, e.Path, next, len(ids))
	}
	return urlutil.JoinPath(baseURL, strings.Join(segments, "/")), nil
}

// Auth endpoints
var (
	AuthRegister       = static(http.MethodPost, "/api/users/register")
	AuthLogin          = static(http.MethodPost, "/api/users/login")
	AuthForgotPassword = static(http.MethodPost, "/api/users/forgot-password")
	AuthVerifyOTP      = static(http.MethodPost, "/api/users/verify-otp")
	AuthResetPassword  = static(http.MethodPost, "/api/users/reset-password")
)

// User endpoints
var (
	UsersProfile        = static(http.MethodGet, "/api/users/profile")
	UsersUpdateProfile  = static(http.MethodPut, "/api/users/profile")
	UsersChangePassword = static(http.MethodPost, "/api/users/change-password")
	UsersDeleteAccount  = static(http.MethodDelete, "/api/users/delete-account")
	UsersApprove        = static(http.MethodPost, "/api/users/approve")
	UsersReject         = static(http.MethodPost, "/api/users/reject")
	UsersFeedback       = static(http.MethodGet, "/api/users/feedback")
	UsersSubmitFeedback = static(http.MethodPost, "/api/users/feedback")
	UsersReplyFeedback  = static(http.MethodPost, "/api/users/feedback/reply")
)

// Product and category endpoints
var (
	ProductsList     = static(http.MethodGet, "/api/products")
	ProductsCreate   = static(http.MethodPost, "/api/products")
	ProductsTrending = static(http.MethodGet, "/api/products/trending")
	ProductsActivity = static(http.MethodGet, "/api/products/activity")
	ProductsGet      = templated(http.MethodGet, "/api/products/:id")
	ProductsUpdate   = templated(http.MethodPut, "/api/products/:id")
	ProductsDelete   = templated(http.MethodDelete, "/api/products/:id")

	CategoriesList   = static(http.MethodGet, "/api/categories")
	CategoriesCreate = static(http.MethodPost, "/api/categories")
)

// Store endpoints
var (
	StoresList          = static(http.MethodGet, "/api/stores")
	StoresCreate        = static(http.MethodPost, "/api/stores")
	StoresUpdate        = static(http.MethodPut, "/api/stores")
	StoresMine          = static(http.MethodGet, "/api/stores/my-store")
	StoresView          = static(http.MethodPost, "/api/stores/view")
	StoresLike          = static(http.MethodPost, "/api/stores/like")
	StoresFollow        = static(http.MethodPost, "/api/stores/follow")
	StoresComment       = static(http.MethodPost, "/api/stores/comment")
	StoresFavorite      = static(http.MethodPost, "/api/stores/favorite")
	StoresFavorites     = static(http.MethodGet, "/api/stores/favorites")
	StoresUserFavorites = templated(http.MethodGet, "/api/stores/favorites/:userId")
	StoresNearby        = static(http.MethodGet, "/api/stores/nearby")
	StoresDetails       = templated(http.MethodGet, "/api/stores/details/:id")
)

// Promotion endpoints
var (
	PromotionsList   = static(http.MethodGet, "/api/promotions")
	PromotionsCreate = static(http.MethodPost, "/api/promotions")
	PromotionsGet    = templated(http.MethodGet, "/api/promotions/:id")
	PromotionsUpdate = templated(http.MethodPut, "/api/promotions/:id")
	PromotionsDelete = templated(http.MethodDelete, "/api/promotions/:id")
)

// Subscription endpoints
var (
	SubscriptionsTiers       = static(http.MethodGet, "/api/subscriptions/tiers")
	SubscriptionsUpdateTiers = static(http.MethodPut, "/api/subscriptions/tiers")
	SubscriptionsSubscribe   = static(http.MethodPost, "/api/subscriptions/subscribe")
	SubscriptionsGet         = static(http.MethodGet, "/api/subscriptions")
	SubscriptionsCancel      = static(http.MethodPost, "/api/subscriptions/cancel")
)

// Notification endpoints
var (
	NotificationsList     = static(http.MethodGet, "/api/notifications")
	NotificationsCreate   = static(http.MethodPost, "/api/notifications")
	NotificationsMarkRead = templated(http.MethodPut, "/api/notifications/:id/read")
)

// FAQ endpoints
var (
	FAQsList   = static(http.MethodGet, "/api/faqs")
	FAQsCreate = static(http.MethodPost, "/api/faqs")
	FAQsGet    = templated(http.MethodGet, "/api/faqs/:id")
	FAQsUpdate = templated(http.MethodPut, "/api/faqs/:id")
	FAQsDelete = templated(http.MethodDelete, "/api/faqs/:id")
)

// Stats endpoints
var (
	StatsPaidUsers       = static(http.MethodGet, "/api/stats/paid-users")
	StatsStoreOwners     = static(http.MethodGet, "/api/stats/store-owners")
	StatsResellers       = static(http.MethodGet, "/api/stats/resellers")
	StatsRevenue         = static(http.MethodGet, "/api/stats/revenue")
	StatsRecentActivity  = static(http.MethodGet, "/api/stats/recent-activity")
	StatsRecentFeedbacks = static(http.MethodGet, "/api/stats/recent-feedbacks")
	StatsQuick           = static(http.MethodGet, "/api/stats/quick-stats")
)

// catalog names every endpoint as resource.action
var catalog = map[string]Endpoint{
	"auth.register":       AuthRegister,
	"auth.login":          AuthLogin,
	"auth.forgotPassword": AuthForgotPassword,
	"auth.verifyOtp":      AuthVerifyOTP,
	"auth.resetPassword":  AuthResetPassword,

	"users.profile":        UsersProfile,
	"users.updateProfile":  UsersUpdateProfile,
	"users.changePassword": UsersChangePassword,
	"users.deleteAccount":  UsersDeleteAccount,
	"users.approve":        UsersApprove,
	"users.reject":         UsersReject,
	"users.feedback":       UsersFeedback,
	"users.submitFeedback": UsersSubmitFeedback,
	"users.replyFeedback":  UsersReplyFeedback,

	"products.list":     ProductsList,
	"products.create":   ProductsCreate,
	"products.trending": ProductsTrending,
	"products.activity": ProductsActivity,
	"products.getById":  ProductsGet,
	"products.update":   ProductsUpdate,
	"products.delete":   ProductsDelete,

	"categories.list":   CategoriesList,
	"categories.create": CategoriesCreate,

	"stores.list":          StoresList,
	"stores.create":        StoresCreate,
	"stores.update":        StoresUpdate,
	"stores.myStore":       StoresMine,
	"stores.view":          StoresView,
	"stores.like":          StoresLike,
	"stores.follow":        StoresFollow,
	"stores.comment":       StoresComment,
	"stores.favorite":      StoresFavorite,
	"stores.favorites":     StoresFavorites,
	"stores.userFavorites": StoresUserFavorites,
	"stores.nearby":        StoresNearby,
	"stores.details":       StoresDetails,

	"promotions.list":    PromotionsList,
	"promotions.create":  PromotionsCreate,
	"promotions.getById": PromotionsGet,
	"promotions.update":  PromotionsUpdate,
	"promotions.delete":  PromotionsDelete,

	"subscriptions.tiers":       SubscriptionsTiers,
	"subscriptions.updateTiers": SubscriptionsUpdateTiers,
	"subscriptions.subscribe":   SubscriptionsSubscribe,
	"subscriptions.get":         SubscriptionsGet,
	"subscriptions.cancel":      SubscriptionsCancel,

	"notifications.list":     NotificationsList,
	"notifications.create":   NotificationsCreate,
	"notifications.markRead": NotificationsMarkRead,

	"faqs.list":    FAQsList,
	"faqs.create":  FAQsCreate,
	"faqs.getById": FAQsGet,
	"faqs.update":  FAQsUpdate,
	"faqs.delete":  FAQsDelete,

	"stats.paidUsers":       StatsPaidUsers,
	"stats.storeOwners":     StatsStoreOwners,
	"stats.resellers":       StatsResellers,
	"stats.revenue":         StatsRevenue,
	"stats.recentActivity":  StatsRecentActivity,
	"stats.recentFeedbacks": StatsRecentFeedbacks,
	"stats.quickStats":      StatsQuick,
}

// NamedEndpoint is a catalog entry with its resource.action name
type NamedEndpoint struct {
	Name string
	Endpoint
}

// Catalog resolves endpoints against one base URL
type Catalog struct {
	baseURL string
}

// NewCatalog creates a catalog rooted at baseURL
func NewCatalog(baseURL string) *Catalog {
	return &Catalog{baseURL: baseURL}
}

// BaseURL returns the base URL the catalog resolves against
func (c *Catalog) BaseURL() string {
	return c.baseURL
}

// URL builds the fully-qualified URL of e
func (c *Catalog) URL(e Endpoint, ids ...string) (string, error) {
	return e.Build(c.baseURL, ids...)
}

// Lookup finds an endpoint by its resource.action name
func (c *Catalog) Lookup(name string) (Endpoint, bool) {
	e, ok := catalog[name]
	return e, ok
}

// All returns every endpoint sorted by name
func (c *Catalog) All() []NamedEndpoint {
	all := make([]NamedEndpoint, 0, len(catalog))
	for name, e := range catalog {
		all = append(all, NamedEndpoint{Name: name, Endpoint: e})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}
