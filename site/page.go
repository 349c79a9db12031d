package site

import "showcase/catalog"

const (
	pageTitle = "Steinmetz"
	headline  = "Hardware for the EV Age"
	company   = "Steinmetz, Inc."
)

// Member is a team card on the landing page.
type Member struct {
	Name string
	Role string
	Bio  string
}

var team = []Member{
	{Name: "Owen Brake", Role: "Co-Founder & CEO"},
	{
		Name: "Ethan Childerhose",
		Role: "Co-Founder & CTO",
		Bio: "Ethan grew up in Ontario, Canada cutting his teeth on numerous hobby projects and " +
			"competing extensively in student robotics reaching international success. Ethan has " +
			"fullstack engineering skills from mechanical engineering to semiconductor design at " +
			"companies such as Tesla, Neuralink, Nvidia, and RocketLab. He prides himself in working " +
			"across the technical stack, tackling complex problems in cross disciplinary ways.",
	},
}

// PageData feeds the landing page.
type PageData struct {
	Hero          string
	Catalog       *catalog.Catalog
	Team          []Member
	SchedulingURL string
	Year          int
}

type contactField struct {
	name, label, kind string
	required          bool
}

var contactFields = []contactField{
	{"firstName", "First Name", "text", true},
	{"lastName", "Last Name", "text", true},
	{"email", "Email", "email", true},
	{"companyName", "Company Name", "text", true},
	{"jobTitle", "Job Title", "text", false},
	{"companyHeadquarters", "Company Headquarters", "text", false},
}
