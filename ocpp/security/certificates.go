package security

// Security extension (Improved Security for OCPP 1.6-J). Message shapes only;
// certificate handling itself happens on the charge point.

const (
	CertificateSignedFeatureName          = "CertificateSigned"
	DeleteCertificateFeatureName          = "DeleteCertificate"
	GetInstalledCertificateIdsFeatureName = "GetInstalledCertificateIds"
	InstallCertificateFeatureName         = "InstallCertificate"
)

type CertificateSignedStatus string
type DeleteCertificateStatus string
type GetInstalledCertificateStatus string
type InstallCertificateStatus string
type CertificateUse string
type HashAlgorithm string

const (
	CertificateSignedStatusAccepted       CertificateSignedStatus       = "Accepted"
	CertificateSignedStatusRejected       CertificateSignedStatus       = "Rejected"
	DeleteCertificateStatusAccepted       DeleteCertificateStatus       = "Accepted"
	DeleteCertificateStatusFailed         DeleteCertificateStatus       = "Failed"
	DeleteCertificateStatusNotFound       DeleteCertificateStatus       = "NotFound"
	GetInstalledCertificateStatusAccepted GetInstalledCertificateStatus = "Accepted"
	GetInstalledCertificateStatusNotFound GetInstalledCertificateStatus = "NotFound"
	InstallCertificateStatusAccepted      InstallCertificateStatus      = "Accepted"
	InstallCertificateStatusFailed        InstallCertificateStatus      = "Failed"
	InstallCertificateStatusRejected      InstallCertificateStatus      = "Rejected"
	CentralSystemRootCertificate          CertificateUse                = "CentralSystemRootCertificate"
	ManufacturerRootCertificate           CertificateUse                = "ManufacturerRootCertificate"
	SHA256                                HashAlgorithm                 = "SHA256"
	SHA384                                HashAlgorithm                 = "SHA384"
	SHA512                                HashAlgorithm                 = "SHA512"
)

type CertificateHashData struct {
	HashAlgorithm  HashAlgorithm `json:"hashAlgorithm" validate:"required,hashAlgorithm"`
	IssuerNameHash string        `json:"issuerNameHash" validate:"required,max=128"`
	IssuerKeyHash  string        `json:"issuerKeyHash" validate:"required,max=128"`
	SerialNumber   string        `json:"serialNumber" validate:"required,max=40"`
}

type CertificateSignedRequest struct {
	CertificateChain string `json:"certificateChain" validate:"required,max=10000"`
}

type CertificateSignedResponse struct {
	Status CertificateSignedStatus `json:"status" validate:"required,certificateSignedStatus"`
}

type DeleteCertificateRequest struct {
	CertificateHashData *CertificateHashData `json:"certificateHashData" validate:"required"`
}

type DeleteCertificateResponse struct {
	Status DeleteCertificateStatus `json:"status" validate:"required,deleteCertificateStatus"`
}

type GetInstalledCertificateIdsRequest struct {
	CertificateType CertificateUse `json:"certificateType" validate:"required,certificateUse"`
}

type GetInstalledCertificateIdsResponse struct {
	Status              GetInstalledCertificateStatus `json:"status" validate:"required,getInstalledCertificateStatus"`
	CertificateHashData []CertificateHashData         `json:"certificateHashData,omitempty" validate:"omitempty,dive"`
}

type InstallCertificateRequest struct {
	CertificateType CertificateUse `json:"certificateType" validate:"required,certificateUse"`
	Certificate     string         `json:"certificate" validate:"required,max=5500"`
}

type InstallCertificateResponse struct {
	Status InstallCertificateStatus `json:"status" validate:"required,installCertificateStatus"`
}

func (r CertificateSignedRequest) GetFeatureName() string  { return CertificateSignedFeatureName }
func (c CertificateSignedResponse) GetFeatureName() string { return CertificateSignedFeatureName }
func (r DeleteCertificateRequest) GetFeatureName() string  { return DeleteCertificateFeatureName }
func (c DeleteCertificateResponse) GetFeatureName() string { return DeleteCertificateFeatureName }
func (r GetInstalledCertificateIdsRequest) GetFeatureName() string {
	return GetInstalledCertificateIdsFeatureName
}
func (c GetInstalledCertificateIdsResponse) GetFeatureName() string {
	return GetInstalledCertificateIdsFeatureName
}
func (r InstallCertificateRequest) GetFeatureName() string  { return InstallCertificateFeatureName }
func (c InstallCertificateResponse) GetFeatureName() string { return InstallCertificateFeatureName }

func NewCertificateSignedRequest(chain string) *CertificateSignedRequest {
	return &CertificateSignedRequest{CertificateChain: chain}
}

func NewInstallCertificateRequest(certificateType CertificateUse, certificate string) *InstallCertificateRequest {
	return &InstallCertificateRequest{CertificateType: certificateType, Certificate: certificate}
}
