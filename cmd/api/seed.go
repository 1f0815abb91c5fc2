package main

import (
	"time"

	"quizdeck/internal/domains"
)

// seedLocalDomains returns the starter study-domain catalog for local
// development with the in-memory store.
func seedLocalDomains() []domains.Domain {
	now := time.Now().UTC()

	return []domains.Domain{
		{
			ID:        "anatomy",
			Title:     "Anatomy & Physiology",
			Icon:      "HeartPulse",
			Color:     "hsl(0, 72%, 51%)",
			Bg:        "bg-red-50",
			Programs:  []string{"nursing", "medicine"},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        "pharmacology",
			Title:     "Pharmacology",
			Icon:      "Pill",
			Color:     "hsl(262, 83%, 58%)",
			Bg:        "bg-purple-50",
			Programs:  []string{"nursing", "pharmacy"},
			CreatedAt: now.Add(1 * time.Minute),
			UpdatedAt: now.Add(1 * time.Minute),
		},
		{
			ID:        "microbiology",
			Title:     "Microbiology",
			Icon:      "Microscope",
			Color:     "hsl(142, 71%, 45%)",
			Bg:        "bg-green-50",
			Programs:  []string{"medicine", "lab-science"},
			CreatedAt: now.Add(2 * time.Minute),
			UpdatedAt: now.Add(2 * time.Minute),
		},
		{
			ID:        "medical-ethics",
			Title:     "Medical Ethics",
			Icon:      "Scale",
			Color:     "hsl(217, 91%, 60%)",
			Bg:        "bg-blue-50",
			Programs:  []string{"nursing", "medicine", "public-health"},
			CreatedAt: now.Add(3 * time.Minute),
			UpdatedAt: now.Add(3 * time.Minute),
		},
	}
}
