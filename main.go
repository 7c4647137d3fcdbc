package main

import "github.com/mediatag/tagger-api/cmd"

// @title           Media Tagger API
// @version         1.0.0
// @description     Automatic tagging and boolean tag search for videos and images
// @contact.name    API Support
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /
// @schemes         http https
func main() {
	cmd.Execute()
}
