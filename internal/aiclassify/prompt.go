package aiclassify

import (
	"fmt"
	"strings"

	"github.com/sells-group/leadfilter-cli/internal/model"
)

// systemPrompt is the fixed classification rubric. It is identical for
// every request in a run, which lets backends cache it server-side.
const systemPrompt = `You qualify leads scraped from Google Maps for home-service contractors.

Given a business and a target service, decide whether the business ACTIVELY PERFORMS that service for customers. A business that merely sells, rents, supplies, or has the feature does not count:
- a pool supply store does not build pools
- an art gallery does not paint houses
- a restaurant has a kitchen but does not remodel kitchens
- a sports facility with turf does not install turf

Always exclude: retail stores and chains, product suppliers and manufacturers, government and civic offices, schools, churches, restaurants and food service, hotels, sports and recreation facilities, property managers and real estate, medical and legal offices.

Respond with only a JSON object:
{"is_service_provider": <true|false>, "confidence": <0.0-1.0>, "reason": "<one sentence>"}`

const userPromptFormat = `Target service: %s

Business:
  Name: %s
  Listed category: %s
  Address: %s%s`

// fewShotExample is a labeled reference case for one service type.
type fewShotExample struct {
	Name     string
	Provider bool
	Note     string
}

// fewShotExamples gives the model category-specific contrast pairs for
// the trickiest false positives seen in scraped data.
var fewShotExamples = map[string][]fewShotExample{
	string(model.ServicePaintingCompanies): {
		{Name: "Art Smart Painting", Provider: true, Note: "residential painting contractor despite 'art' in the name"},
		{Name: "State of the Art Painting", Provider: true, Note: "painting contractor; 'state of the art' is marketing"},
		{Name: "McKinney Art House", Provider: false, Note: "art venue, does not paint property"},
		{Name: "Painting with a Twist", Provider: false, Note: "recreational paint-and-sip studio"},
	},
	string(model.ServicePoolBuilders): {
		{Name: "Lone Star Luxury Pools", Provider: true, Note: "designs and builds swimming pools"},
		{Name: "Pool Supply Warehouse", Provider: false, Note: "retail supplier, does not build pools"},
		{Name: "Corner Pocket Pool Hall", Provider: false, Note: "billiards venue"},
	},
	string(model.ServiceKitchenRemodeling): {
		{Name: "Precision Kitchen & Bath Remodeling", Provider: true, Note: "remodeling contractor"},
		{Name: "Thai Kitchen", Provider: false, Note: "restaurant"},
		{Name: "Builder's Appliance Outlet", Provider: false, Note: "sells appliances, does not remodel"},
	},
	string(model.ServiceCustomHomeBuilders): {
		{Name: "Hilltop Custom Homes", Provider: true, Note: "builds custom homes"},
		{Name: "Sunrise Mobile Homes", Provider: false, Note: "sells manufactured homes"},
		{Name: "Oak Ridge Realty", Provider: false, Note: "sells existing homes"},
	},
	string(model.ServiceArtificialTurf): {
		{Name: "GreenScape Turf Installation", Provider: true, Note: "installs artificial turf"},
		{Name: "Metro Turf Supply", Provider: false, Note: "sells turf rolls, does not install"},
		{Name: "Victory Indoor Sports", Provider: false, Note: "facility with turf fields"},
	},
	string(model.ServiceFencing): {
		{Name: "Iron Horse Fence Co", Provider: true, Note: "installs fences"},
		{Name: "Olympic Fencing Academy", Provider: false, Note: "teaches sport fencing"},
	},
}

// buildUserPrompt renders the per-business prompt, including few-shot
// guidance when the service type has known traps.
func buildUserPrompt(lead model.Lead, serviceType string) string {
	category := lead.Category
	if category == "" {
		category = "(not listed)"
	}
	address := lead.Address
	if address == "" {
		address = "(not listed)"
	}

	return fmt.Sprintf(userPromptFormat,
		serviceType, lead.Name, category, address, renderExamples(serviceType))
}

func renderExamples(serviceType string) string {
	examples, ok := fewShotExamples[serviceType]
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nReference cases for this service:\n")
	for _, ex := range examples {
		mark := "✗"
		if ex.Provider {
			mark = "✓"
		}
		fmt.Fprintf(&b, "  %s %s — %s\n", mark, ex.Name, ex.Note)
	}
	return strings.TrimRight(b.String(), "\n")
}
