package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

type clientOpts struct {
	debug   bool // controls whether engine debug info is requested and returned
	verbose bool // controls whether verbose solr requests/responses are logged
}

type clientContext struct {
	reqID     string          // internally generated
	start     time.Time       // internally set
	opts      clientOpts      // options set by client
	locale    string          // resolved response locale
	localeTag language.Tag    // parsed form of the above
	localizer *i18n.Localizer // per-request localization
	ginCtx    *gin.Context    // gin context
}

func boolOptionWithFallback(opt string, fallback bool) bool {
	var err error
	var val bool

	if val, err = strconv.ParseBool(opt); err != nil {
		val = fallback
	}

	return val
}

func (c *clientContext) init(p *serviceContext, ctx *gin.Context) {
	c.ginCtx = ctx

	c.start = time.Now()
	c.reqID = p.randomID()

	// locale comes from an explicit parameter first, then the Accept-Language
	// header, then the configured default
	c.locale = ""
	if ctx != nil {
		c.locale = ctx.Query("locale")
		if c.locale == "" {
			c.locale = strings.Split(strings.Split(ctx.GetHeader("Accept-Language"), ",")[0], "-")[0]
		}
	}

	if _, supported := p.maps.localeTags[c.locale]; supported == false {
		c.locale = p.config.Service.DefaultLocale
	}

	c.localeTag = p.maps.localeTags[c.locale]
	c.localizer = i18n.NewLocalizer(p.translations.bundle, c.locale)

	if ctx != nil {
		ctx.Header("Content-Language", c.locale)

		c.opts.debug = boolOptionWithFallback(ctx.Query("debug"), false)
		c.opts.verbose = boolOptionWithFallback(ctx.Query("verbose"), false)
	}
}

func (c *clientContext) logRequest() {
	c.log("------------------------------[ NEW REQUEST ]------------------------------")

	query := ""
	if c.ginCtx.Request.URL.RawQuery != "" {
		query = fmt.Sprintf("?%s", c.ginCtx.Request.URL.RawQuery)
	}

	c.log("[REQUEST] %s %s%s  (locale: %s)", c.ginCtx.Request.Method, c.ginCtx.Request.URL.Path, query, c.locale)
}

func (c *clientContext) logResponse(resp searchResponse) {
	msg := fmt.Sprintf("[RESPONSE] status: %d", resp.status)

	if resp.err != nil {
		msg = msg + fmt.Sprintf(", error: %s", resp.err.Error())
	}

	msg = msg + fmt.Sprintf(", elapsed: %d ms", int64(time.Since(c.start)/time.Millisecond))

	c.log("%s", msg)
}

func (c *clientContext) printf(prefix, format string, args ...interface{}) {
	str := fmt.Sprintf(format, args...)

	if prefix != "" {
		str = strings.Join([]string{prefix, str}, " ")
	}

	log.Printf("[%s] %s", c.reqID, str)
}

func (c *clientContext) log(format string, args ...interface{}) {
	c.printf("", format, args...)
}

func (c *clientContext) err(format string, args ...interface{}) {
	c.printf("ERROR:", format, args...)
}

func (c *clientContext) localize(id string) string {
	return c.localizer.MustLocalize(&i18n.LocalizeConfig{MessageID: id})
}

func (c *clientContext) localizeFor(p *serviceContext, locale, id string) string {
	localizer := i18n.NewLocalizer(p.translations.bundle, locale)

	return localizer.MustLocalize(&i18n.LocalizeConfig{MessageID: id})
}
