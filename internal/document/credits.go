package document

import "encoding/json"

// topBilledCast caps how many cast members feed the composite document,
// keeping the content signal focused on the top-billed names.
const topBilledCast = 5

type castMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

type crewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// CastFromJSON extracts the top-billed actor and character names from a
// TMDB-style cast JSON blob. Malformed input is recovered locally: both
// slices come back empty and the composite document simply carries less
// signal. The two slices stay positionally aligned.
func CastFromJSON(raw string) (actors, characters []string) {
	if raw == "" {
		return nil, nil
	}
	var members []castMember
	if err := json.Unmarshal([]byte(raw), &members); err != nil {
		return nil, nil
	}
	for _, m := range members {
		if m.Order >= topBilledCast {
			continue
		}
		actors = append(actors, m.Name)
		characters = append(characters, m.Character)
	}
	return actors, characters
}

// CrewFromJSON extracts crew names matching the given job title from a
// TMDB-style crew JSON blob. Malformed input yields an empty slice.
func CrewFromJSON(raw, job string) []string {
	if raw == "" {
		return nil
	}
	var members []crewMember
	if err := json.Unmarshal([]byte(raw), &members); err != nil {
		return nil
	}
	var names []string
	for _, m := range members {
		if m.Job == job {
			names = append(names, m.Name)
		}
	}
	return names
}

// CreditsFromJSON assembles Credits from raw cast and crew JSON blobs.
func CreditsFromJSON(castJSON, crewJSON string) Credits {
	actors, characters := CastFromJSON(castJSON)
	return Credits{
		Actors:     actors,
		Characters: characters,
		Directors:  CrewFromJSON(crewJSON, "Director"),
		Writers:    CrewFromJSON(crewJSON, "Writer"),
		Composers:  CrewFromJSON(crewJSON, "Composer"),
	}
}
