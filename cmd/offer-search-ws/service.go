package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pflikweert/offer-search-ws/internal/solr"
	"golang.org/x/text/language"
)

// git commit used for this build; supplied at compile time
var gitCommit string

type serviceVersion struct {
	BuildVersion string `json:"build,omitempty"`
	GoVersion    string `json:"go_version,omitempty"`
	GitCommit    string `json:"git_commit,omitempty"`
}

type serviceTranslations struct {
	bundle *i18n.Bundle
}

type serviceMaps struct {
	makesByID        map[int]*serviceConfigMake
	makesBySlug      map[string]*serviceConfigMake
	categoriesByID   map[int]*serviceConfigCategory
	categoriesByName map[string]*serviceConfigCategory // keyed by default-locale name, lowercased
	localeTags       map[string]language.Tag
}

type serviceContext struct {
	randomLock   sync.Mutex
	randomSource *rand.Rand
	config       *serviceConfig
	translations serviceTranslations
	version      serviceVersion
	solr         *solr.Client
	maps         serviceMaps
	facetCache   *facetCache
}

// randomID draws a short hex tag for request logging. Requests arrive
// concurrently and the shared source is not safe without the lock.
func (p *serviceContext) randomID() string {
	p.randomLock.Lock()
	defer p.randomLock.Unlock()

	return fmt.Sprintf("%08x", p.randomSource.Uint32())
}

type stringValidator struct {
	values  []string
	invalid bool
	prefix  string
	postfix string
}

func (v *stringValidator) addValue(value string) {
	if value != "" {
		v.values = append(v.values, value)
	}
}

func (v *stringValidator) setPrefix(prefix string) {
	v.prefix = prefix
}

func (v *stringValidator) setPostfix(postfix string) {
	v.postfix = postfix
}

func (v *stringValidator) requireValue(value string, label string) {
	if value == "" {
		log.Printf("[VALIDATE] %smissing %s%s", v.prefix, label, v.postfix)
		v.invalid = true
		return
	}

	v.addValue(value)
}

func (v *stringValidator) Values() []string {
	return v.values
}

func (v *stringValidator) Invalid() bool {
	return v.invalid
}

func (p *serviceContext) initVersion() {
	buildVersion := "unknown"
	files, _ := filepath.Glob("buildtag.*")
	if len(files) == 1 {
		buildVersion = strings.Replace(files[0], "buildtag.", "", 1)
	}

	p.version = serviceVersion{
		BuildVersion: buildVersion,
		GoVersion:    fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
		GitCommit:    gitCommit,
	}

	log.Printf("[SERVICE] version.BuildVersion = [%s]", p.version.BuildVersion)
	log.Printf("[SERVICE] version.GoVersion    = [%s]", p.version.GoVersion)
	log.Printf("[SERVICE] version.GitCommit    = [%s]", p.version.GitCommit)
}

func (p *serviceContext) initSolr() {
	endpoint, err := solr.ParseEndpoint(p.config.Solr.URL)
	if err != nil {
		log.Printf("[SOLR] %s", err.Error())
		os.Exit(1)
	}

	endpoint.Timeout = time.Duration(timeoutWithMinimum(p.config.Solr.ReadTimeout, 5)) * time.Second
	endpoint.ConnTimeout = time.Duration(timeoutWithMinimum(p.config.Solr.ConnTimeout, 5)) * time.Second

	p.solr = solr.NewClient(endpoint)

	log.Printf("[SOLR] base uri                = [%s]", endpoint.BaseURI())
}

func (p *serviceContext) initLookups() {
	p.maps.makesByID = make(map[int]*serviceConfigMake)
	p.maps.makesBySlug = make(map[string]*serviceConfigMake)

	for i := range p.config.Makes {
		m := &p.config.Makes[i]
		p.maps.makesByID[m.ID] = m
		p.maps.makesBySlug[strings.ToLower(m.Slug)] = m
	}

	p.maps.categoriesByID = make(map[int]*serviceConfigCategory)
	p.maps.categoriesByName = make(map[string]*serviceConfigCategory)

	defaultLocale := p.config.Service.DefaultLocale

	for i := range p.config.Categories {
		c := &p.config.Categories[i]
		p.maps.categoriesByID[c.ID] = c

		if name := c.Names[defaultLocale]; name != "" {
			p.maps.categoriesByName[strings.ToLower(name)] = c
		}
	}

	p.maps.localeTags = make(map[string]language.Tag)
	for _, locale := range p.config.Service.Locales {
		tag, tagErr := language.Parse(locale)
		if tagErr != nil {
			log.Printf("[SERVICE] unparseable locale [%s]: %s", locale, tagErr.Error())
			os.Exit(1)
		}
		p.maps.localeTags[locale] = tag
	}

	log.Printf("[SERVICE] makes                 = [%d]", len(p.config.Makes))
	log.Printf("[SERVICE] categories            = [%d]", len(p.config.Categories))
}

func (p *serviceContext) initTranslations() {
	defaultLang := language.English

	bundle := i18n.NewBundle(defaultLang)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	toml, _ := filepath.Glob("i18n/*.toml")
	for _, f := range toml {
		bundle.MustLoadMessageFile(f)
	}

	p.translations = serviceTranslations{
		bundle: bundle,
	}
}

func (p *serviceContext) validateConfig() {
	// ensure the existence and validity of required values and translation ids

	invalid := false

	var messageIDs stringValidator
	var miscValues stringValidator

	miscValues.requireValue(p.config.Service.Port, "service port")
	miscValues.requireValue(p.config.Service.HostURL, "service host url")
	miscValues.requireValue(p.config.Service.DefaultLocale, "default locale")
	miscValues.requireValue(p.config.Solr.URL, "solr url")
	miscValues.requireValue(p.config.Solr.SuggestDictionary, "solr suggest dictionary")
	miscValues.requireValue(p.config.Relevancy.ReferenceTime, "relevancy reference time")

	if sliceContainsString(p.config.Service.Locales, p.config.Service.DefaultLocale, false) == false {
		log.Printf("[VALIDATE] default locale not in locales list")
		invalid = true
	}

	for i, m := range p.config.Makes {
		prefix := fmt.Sprintf("make index %d: ", i)

		miscValues.setPrefix(prefix)
		miscValues.requireValue(m.Slug, "slug")
		miscValues.requireValue(m.Name, "name")
	}

	miscValues.setPrefix("")

	for i, c := range p.config.Categories {
		prefix := fmt.Sprintf("category index %d: ", i)

		miscValues.setPrefix(prefix)

		if c.Level < 1 || c.Level > 3 {
			log.Printf("[VALIDATE] %slevel out of range: %d", prefix, c.Level)
			invalid = true
		}

		for _, locale := range p.config.Service.Locales {
			miscValues.requireValue(c.Slugs[locale], fmt.Sprintf("slug for locale %s", locale))
			miscValues.requireValue(c.Names[locale], fmt.Sprintf("name for locale %s", locale))
		}
	}

	miscValues.setPrefix("")

	for _, sortOption := range resultSortOptions {
		messageIDs.addValue(sortOption.labelID)
	}

	messageIDs.addValue(msgURLSegmentMake)
	messageIDs.addValue(msgURLSegmentLocation)

	// validate message ids can actually be translated

	langs := []string{}
	tags := p.translations.bundle.LanguageTags()

	for _, tag := range tags {
		lang := tag.String()
		langs = append(langs, lang)
		localizer := i18n.NewLocalizer(p.translations.bundle, lang)
		for _, id := range messageIDs.Values() {
			if _, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: id}); err != nil {
				log.Printf("[VALIDATE] [%s] missing translation for message ID: [%s] (%s)", lang, id, err.Error())
				invalid = true
			}
		}
	}

	// check if anything went wrong anywhere

	if invalid || messageIDs.Invalid() || miscValues.Invalid() {
		log.Printf("[VALIDATE] exiting due to missing/incorrect config value(s) above")
		os.Exit(1)
	}

	log.Printf("[SERVICE] supported languages   = [%s]", strings.Join(langs, ", "))
}

func initializeService(cfg *serviceConfig) *serviceContext {
	p := serviceContext{}

	p.config = cfg
	p.randomSource = rand.New(rand.NewSource(time.Now().UnixNano()))

	p.initTranslations()
	p.initVersion()
	p.initSolr()
	p.initLookups()

	p.validateConfig()

	p.facetCache = newFacetCache(&p, cfg.Search.FacetCacheInterval)

	return &p
}
