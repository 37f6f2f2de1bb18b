package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/greenmap/internal/core/domain"
)

// buildSchema creates the read-only GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	positionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Position",
		Fields: graphql.Fields{
			"lng": &graphql.Field{Type: graphql.Float},
			"lat": &graphql.Field{Type: graphql.Float},
		},
	})

	refType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Ref",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.String},
			"name": &graphql.Field{Type: graphql.String},
		},
	})

	zoneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GreenZone",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"name":           &graphql.Field{Type: graphql.String},
			"coverage_level": &graphql.Field{Type: graphql.String},
			"verified":       &graphql.Field{Type: graphql.Boolean},
			"community":      &graphql.Field{Type: refType},
			"created_by":     &graphql.Field{Type: refType},
			"created_at":     &graphql.Field{Type: graphql.DateTime},
			"geometry": &graphql.Field{
				Type:        graphql.String,
				Description: "GeoJSON Polygon geometry as JSON text",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					switch z := p.Source.(type) {
					case domain.GreenZone:
						return string(z.Coordinates), nil
					case *domain.GreenZone:
						return string(z.Coordinates), nil
					}
					return nil, nil
				},
			},
		},
	})

	zoneRefType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ZoneRef",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"name":           &graphql.Field{Type: graphql.String},
			"coverage_level": &graphql.Field{Type: graphql.String},
			"verified":       &graphql.Field{Type: graphql.Boolean},
		},
	})

	communityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Community",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"name":         &graphql.Field{Type: graphql.String},
			"description":  &graphql.Field{Type: graphql.String},
			"member_count": &graphql.Field{Type: graphql.Int},
			"zone_count":   &graphql.Field{Type: graphql.Int},
			"created_at":   &graphql.Field{Type: graphql.DateTime},
			"members":      &graphql.Field{Type: graphql.NewList(refType)},
			"zones":        &graphql.Field{Type: graphql.NewList(zoneRefType)},
		},
	})

	zoneSummaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ZoneSummary",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"name":           &graphql.Field{Type: graphql.String},
			"coverage_level": &graphql.Field{Type: graphql.String},
			"verified":       &graphql.Field{Type: graphql.Boolean},
			"created_at":     &graphql.Field{Type: graphql.DateTime},
		},
	})

	histogramType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CoverageHistogram",
		Fields: graphql.Fields{
			"High":   &graphql.Field{Type: graphql.Int, Resolve: histogramBucket(domain.CoverageHigh)},
			"Medium": &graphql.Field{Type: graphql.Int, Resolve: histogramBucket(domain.CoverageMedium)},
			"Low":    &graphql.Field{Type: graphql.Int, Resolve: histogramBucket(domain.CoverageLow)},
		},
	})

	dashboardType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Dashboard",
		Fields: graphql.Fields{
			"total_zones":           &graphql.Field{Type: graphql.Int},
			"total_communities":     &graphql.Field{Type: graphql.Int},
			"verified_zones":        &graphql.Field{Type: graphql.Int},
			"total_users":           &graphql.Field{Type: graphql.Int},
			"total_verifications":   &graphql.Field{Type: graphql.Int},
			"co2_offset_kg":         &graphql.Field{Type: graphql.Int},
			"verification_rate_pct": &graphql.Field{Type: graphql.Float},
			"coverage_histogram":    &graphql.Field{Type: histogramType},
			"recent_zones":          &graphql.Field{Type: graphql.NewList(zoneSummaryType)},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DashboardStats",
		Fields: graphql.Fields{
			"growth_trend": &graphql.Field{Type: graphql.NewList(graphql.NewObject(graphql.ObjectConfig{
				Name: "GrowthPeriod",
				Fields: graphql.Fields{
					"period":      &graphql.Field{Type: graphql.String},
					"zones_added": &graphql.Field{Type: graphql.Int},
				},
			}))},
			"top_communities": &graphql.Field{Type: graphql.NewList(graphql.NewObject(graphql.ObjectConfig{
				Name: "CommunityRank",
				Fields: graphql.Fields{
					"name":         &graphql.Field{Type: graphql.String},
					"zone_count":   &graphql.Field{Type: graphql.Int},
					"member_count": &graphql.Field{Type: graphql.Int},
				},
			}))},
		},
	})

	detectedZoneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DetectedZone",
		Fields: graphql.Fields{
			"coverage_level": &graphql.Field{
				Type: graphql.String,
				Resolve: detectedZoneField(func(z domain.DetectedZone) interface{} {
					return string(z.CoverageLevel)
				}),
			},
			"confidence": &graphql.Field{
				Type:    graphql.Float,
				Resolve: detectedZoneField(func(z domain.DetectedZone) interface{} { return z.Confidence }),
			},
			"estimated_tree_count": &graphql.Field{
				Type:    graphql.Int,
				Resolve: detectedZoneField(func(z domain.DetectedZone) interface{} { return z.EstimatedTreeCount }),
			},
			"ring": &graphql.Field{
				Type: graphql.NewList(positionType),
				Resolve: detectedZoneField(func(z domain.DetectedZone) interface{} {
					return []domain.Point(z.Polygon)
				}),
			},
		},
	})

	detectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DetectionResult",
		Fields: graphql.Fields{
			"zone_count":     &graphql.Field{Type: graphql.Int},
			"detected_zones": &graphql.Field{Type: graphql.NewList(detectedZoneType)},
			"processing_time": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if r, ok := p.Source.(*domain.DetectionResult); ok {
						return r.Metadata.ProcessingTime, nil
					}
					return nil, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"zones": &graphql.Field{
				Type:        graphql.NewList(zoneType),
				Description: "List green zones, newest first",
				Args: graphql.FieldConfigArgument{
					"verified":       &graphql.ArgumentConfig{Type: graphql.Boolean},
					"coverage_level": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var filter domain.ZoneFilter
					if v, ok := p.Args["verified"].(bool); ok {
						filter.Verified = &v
					}
					if l, ok := p.Args["coverage_level"].(string); ok {
						filter.CoverageLevel = domain.CoverageLevel(l)
					}
					return deps.Zones.List(p.Context, filter)
				},
			},
			"zone": &graphql.Field{
				Type:        zoneType,
				Description: "Get a green zone by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					zone, err := deps.Zones.Get(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return *zone, nil
				},
			},
			"communities": &graphql.Field{
				Type:        graphql.NewList(communityType),
				Description: "List communities, newest first",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Communities.List(p.Context)
				},
			},
			"community": &graphql.Field{
				Type:        communityType,
				Description: "Get a community with its members and zones",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Communities.Get(p.Context, p.Args["id"].(string))
				},
			},
			"dashboard": &graphql.Field{
				Type:        dashboardType,
				Description: "Aggregated dashboard snapshot",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Dashboard.GetDashboard(p.Context)
				},
			},
			"dashboardStats": &graphql.Field{
				Type:        statsType,
				Description: "Growth trend and top communities",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Dashboard.GetStats(p.Context)
				},
			},
			"detectTrees": &graphql.Field{
				Type:        detectionType,
				Description: "Mock tree detection around a center",
				Args: graphql.FieldConfigArgument{
					"latitude":  &graphql.ArgumentConfig{Type: graphql.Float},
					"longitude": &graphql.ArgumentConfig{Type: graphql.Float},
					"radius":    &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var req domain.DetectionRequest
					if v, ok := p.Args["latitude"].(float64); ok {
						req.Latitude = &v
					}
					if v, ok := p.Args["longitude"].(float64); ok {
						req.Longitude = &v
					}
					if v, ok := p.Args["radius"].(float64); ok {
						req.Radius = &v
					}
					return deps.Detection.Detect(p.Context, req)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// detectedZoneField adapts a getter to a resolver. DetectedZone carries no
// json tags, so the default resolver cannot find its snake_case fields.
func detectedZoneField(get func(domain.DetectedZone) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if z, ok := p.Source.(domain.DetectedZone); ok {
			return get(z), nil
		}
		return nil, nil
	}
}

func histogramBucket(level domain.CoverageLevel) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if h, ok := p.Source.(map[domain.CoverageLevel]int); ok {
			return h[level], nil
		}
		return 0, nil
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
