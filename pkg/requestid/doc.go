// Package requestid attaches a correlation id to every request. The
// gateway stamps X-Request-ID on traffic entering the platform and forwards
// it to the backends, so one id follows a request across services and log
// streams. Client-supplied ids are reused when they look sane; anything
// else is replaced with a fresh UUID.
package requestid
