package constants

// Section classifies an account by the part of the report it was listed in.
type Section string

const (
	SectionOpen   Section = "Open"
	SectionClosed Section = "Closed"
)

// ParseSection maps a stored value back to a Section; unknown values are Open.
func ParseSection(s string) Section {
	if Section(s) == SectionClosed {
		return SectionClosed
	}
	return SectionOpen
}
