// Package google collects Google Cloud configuration through the gcloud CLI.
// Every call is made with --format=json against a single project.
package google

import "github.com/pankaj-dahiya-devops/cloudscan/internal/cache"

// GlobalRegion is the region project-wide resources are recorded under.
const GlobalRegion = "global"

// ListFirewalls holds []Firewall for the project's VPC networks.
var ListFirewalls = cache.API{Service: "firewalls", Operation: "list"}
