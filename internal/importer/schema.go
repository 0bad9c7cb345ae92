package importer

// Entry is one bookmark to import.
type Entry struct {
	URL   string `yaml:"url"`
	Title string `yaml:"title"`
}

// homepageEntry is the leaf of a Homepage bookmarks.yaml.
type homepageEntry struct {
	Icon string `yaml:"icon"`
	Abbr string `yaml:"abbr"`
	Href string `yaml:"href"`
}

// homepageCategory is "- Category: [ - Name: [ {abbr, href} ] ]".
type homepageCategory map[string][]map[string][]homepageEntry

type homepageConfig []homepageCategory
