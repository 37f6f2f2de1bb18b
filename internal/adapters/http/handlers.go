package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/greenmap/internal/core/domain"
	"github.com/samirrijal/greenmap/internal/core/usecases"
)

// DetectTreesHandler runs a mock tree detection around the posted center.
// An empty body uses the default center and radius.
func DetectTreesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.DetectionRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "latitude, longitude and radius must be numbers")
			}
		}

		result, err := deps.Detection.Detect(c.UserContext(), req)
		if err != nil {
			return handleError(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(result)
	}
}

// DetectionStatusHandler describes the mock detection service.
func DetectionStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Detection.Status())
	}
}

// DashboardHandler returns the aggregated dashboard snapshot.
func DashboardHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := deps.Dashboard.GetDashboard(c.UserContext())
		if err != nil {
			return handleError(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(snap)
	}
}

// DashboardStatsHandler returns the growth trend and top communities.
func DashboardStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := deps.Dashboard.GetStats(c.UserContext())
		if err != nil {
			return handleError(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(stats)
	}
}

// CreateZoneHandler maps a new green zone for the signed-in user.
func CreateZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.CreateZoneInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		zone, err := deps.Zones.Create(c.UserContext(), currentUserID(c), in)
		if err != nil {
			return handleError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(zone)
	}
}

// ListZonesHandler lists zones, optionally filtered by ?verified= and
// ?coverage_level=.
func ListZonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var filter domain.ZoneFilter
		if v := c.Query("verified"); v != "" {
			verified, err := strconv.ParseBool(v)
			if err != nil {
				return errBadRequest(c, "verified must be true or false")
			}
			filter.Verified = &verified
		}
		filter.CoverageLevel = domain.CoverageLevel(c.Query("coverage_level"))

		zones, err := deps.Zones.List(c.UserContext(), filter)
		if err != nil {
			return handleError(c, err)
		}
		if zones == nil {
			zones = []domain.GreenZone{}
		}
		return c.JSON(zones)
	}
}

// GetZoneHandler returns a single zone.
func GetZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zone, err := deps.Zones.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(zone)
	}
}

// CreateCommunityHandler founds a community led by the signed-in user.
func CreateCommunityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.CreateCommunityInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		community, err := deps.Communities.Create(c.UserContext(), currentUserID(c), in)
		if err != nil {
			return handleError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(community)
	}
}

// ListCommunitiesHandler lists all communities, newest first.
func ListCommunitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		communities, err := deps.Communities.List(c.UserContext())
		if err != nil {
			return handleError(c, err)
		}
		if communities == nil {
			communities = []domain.Community{}
		}
		return c.JSON(communities)
	}
}

// GetCommunityHandler returns a community with its members and zones.
func GetCommunityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		community, err := deps.Communities.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(community)
	}
}

// JoinCommunityHandler adds the signed-in user to a community.
func JoinCommunityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		community, err := deps.Communities.Join(c.UserContext(), c.Params("id"), currentUserID(c))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(community)
	}
}

// VerifyPlantingHandler accepts a multipart photo ("image") proving planting
// in a zone ("zoneId" or "zone_id").
func VerifyPlantingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zoneID := c.FormValue("zoneId")
		if zoneID == "" {
			zoneID = c.FormValue("zone_id")
		}

		var img *usecases.ImageUpload
		if fh, err := c.FormFile("image"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return errBadRequest(c, "unreadable image upload")
			}
			defer f.Close()
			img = &usecases.ImageUpload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get(fiber.HeaderContentType),
				Size:        fh.Size,
				Body:        f,
			}
		}

		v, err := deps.Verifications.VerifyPlanting(c.UserContext(), currentUserID(c), zoneID, c.FormValue("notes"), img)
		if err != nil {
			return handleError(c, err)
		}
		if deps.Verifications.Deferred() {
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"message":      "Planting verification accepted",
				"verification": v,
			})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":      "Planting verified successfully",
			"verification": v,
		})
	}
}

// ListVerificationsHandler lists all verifications, newest first.
func ListVerificationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := deps.Verifications.List(c.UserContext())
		if err != nil {
			return handleError(c, err)
		}
		if list == nil {
			list = []domain.Verification{}
		}
		return c.JSON(list)
	}
}
