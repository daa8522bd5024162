package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing engine functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Normalizer NormalizerSvcFacade
	Classifier ClassifierSvcFacade
	Reporting  ReportingService
	Tax        TaxService
}
