// @title           Cleo API
// @version         1.0
// @description     Headless CMS backend. Authenticated routes take the caller's API token
// @description     in the "api_token" field of the JSON body; a Bearer header is accepted too.
// @BasePath        /
// @securityDefinitions.apikey BearerToken
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and your API token. Example: "Bearer cleo_xxx"
package api
