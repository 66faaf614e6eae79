package usecase

// UseCases bundles the intake operations exposed by the transports.
type UseCases struct {
	Quote      *CalculateEMIUseCase
	Submit     *SubmitLoanApplicationUseCase
	List       *ListApplicationsUseCase
	Delete     *DeleteApplicationUseCase
	DeleteDay  *DeleteApplicationsByDateUseCase
	Export     *ExportApplicationsUseCase
	AdminLogin *AdminLoginUseCase
}
