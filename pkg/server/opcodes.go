package server

// Packet ids the server mints or consumes, grouped by phase and
// direction. Protocol 773 (~1.21.x) reassigns ids release to release; the
// values below are this server's stable assignment, not a transcription
// of a specific vanilla build.
const (
	// Handshaking, serverbound.
	idHandshake = 0x00

	// Login, serverbound.
	idLoginStart        = 0x00
	idLoginAcknowledged = 0x03

	// Login, clientbound.
	idLoginSuccess = 0x02

	// Configuration, serverbound.
	idClientInformation           = 0x00
	idPluginMessageConfig         = 0x02
	idAckFinishConfiguration      = 0x03
	idServerboundKnownPacksConfig = 0x07

	// Configuration, clientbound.
	idRegistryData          = 0x07
	idFinishConfiguration   = 0x03
	idClientboundKnownPacks = 0x0E

	// Play, serverbound.
	idSBKeepAlive            = 0x1A
	idSBSetPlayerPosition    = 0x1D
	idSBSetPlayerPosRot      = 0x1E
	idSBSetPlayerRotation    = 0x1F
	idSBPlayerAction         = 0x25
	idSBUseItemOn            = 0x38
	idSBSwingArm             = 0x37
	idSBSetHeldItem          = 0x36
	idSBSetCreativeModeSlot  = 0x34
	idSBClickContainer       = 0x10
	idSBClickContainerButton = 0x0D
	idSBCloseContainer       = 0x0F
	idSBChatMessage          = 0x07

	// Play, clientbound.
	idCBLogin                        = 0x2B
	idCBSynchronizePlayerPosition    = 0x41
	idCBUpdateTime                   = 0x64
	idCBGameEvent                    = 0x23
	idCBKeepAlive                    = 0x27
	idCBChunkDataAndUpdateLight      = 0x28
	idCBSpawnEntity                  = 0x01
	idCBRemoveEntities               = 0x42
	idCBTeleportEntity               = 0x70
	idCBUpdateEntityPositionRotation = 0x2F
	idCBUpdateEntityRotation         = 0x30
	idCBRotateHead                   = 0x47
	idCBPlayerInfoUpdate             = 0x3F
	idCBPlayerInfoRemove             = 0x3E
	idCBBlockUpdate                  = 0x09
	idCBSetBlockDestroyStage         = 0x06
	idCBWorldEvent                   = 0x25
	idCBEntityAnimation              = 0x02
	idCBSystemChatMessage            = 0x72
	idCBSetContainerSlot             = 0x13
	idCBSetEntityVelocity            = 0x5A
)

// Player Info Update action flags.
const (
	playerInfoActionAddPlayer    = 0x01
	playerInfoActionUpdateListed = 0x08
)
